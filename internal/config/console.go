package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ConsolePolicy tunes per-domain store behavior without a redeploy.
type ConsolePolicy struct {
	RecentWindowDays  int             `mapstructure:"recentWindowDays"`
	RecentLimit       int             `mapstructure:"recentLimit"`
	HistoryPageSize   int             `mapstructure:"historyPageSize"`
	CatalogCacheTTL   time.Duration   `mapstructure:"catalogCacheTTL"`
	ReferenceCacheTTL time.Duration   `mapstructure:"referenceCacheTTL"`
	FallbackOverrides map[string]bool `mapstructure:"fallbackOverrides"`
}

func DefaultConsolePolicy() ConsolePolicy {
	return ConsolePolicy{
		RecentWindowDays:  30,
		RecentLimit:       20,
		HistoryPageSize:   50,
		CatalogCacheTTL:   10 * time.Minute,
		ReferenceCacheTTL: time.Hour,
	}
}

// ConsolePolicyHolder exposes the current policy and hot-reloads it
// when console.yml changes on disk.
type ConsolePolicyHolder struct {
	current atomic.Value // holds ConsolePolicy
}

func NewConsolePolicyHolder() (*ConsolePolicyHolder, error) {
	v := viper.New()

	v.SetConfigName("console")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/tilldesk/config")
	v.AddConfigPath("/etc/tilldesk")
	v.AddConfigPath(".")

	v.SetEnvPrefix("TILLDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultConsolePolicy()
		v.SetDefault("console.recentWindowDays", defaults.RecentWindowDays)
		v.SetDefault("console.recentLimit", defaults.RecentLimit)
		v.SetDefault("console.historyPageSize", defaults.HistoryPageSize)
		v.SetDefault("console.catalogCacheTTL", defaults.CatalogCacheTTL)
		v.SetDefault("console.referenceCacheTTL", defaults.ReferenceCacheTTL)
	}

	var policy ConsolePolicy
	if err := v.UnmarshalKey("console", &policy); err != nil {
		return nil, err
	}
	if err := validateConsolePolicy(policy); err != nil {
		return nil, err
	}

	holder := &ConsolePolicyHolder{}
	holder.current.Store(policy)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ConsolePolicy
		if err := v.UnmarshalKey("console", &updated); err != nil {
			log.Printf("[console-policy] reload failed: %v", err)
			return
		}
		if err := validateConsolePolicy(updated); err != nil {
			log.Printf("[console-policy] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[console-policy] reloaded from %s", e.Name)
	})

	return holder, nil
}

// StaticConsolePolicyHolder pins a holder to the given policy with no
// file watching. Intended for tests.
func StaticConsolePolicyHolder(policy ConsolePolicy) *ConsolePolicyHolder {
	holder := &ConsolePolicyHolder{}
	holder.current.Store(policy)
	return holder
}

func (h *ConsolePolicyHolder) Get() ConsolePolicy {
	return h.current.Load().(ConsolePolicy)
}

// FallbackFor reports whether demo fallback applies for the given domain,
// honoring per-domain overrides from console.yml.
func (h *ConsolePolicyHolder) FallbackFor(domain string, global bool) bool {
	policy := h.Get()
	if policy.FallbackOverrides == nil {
		return global
	}
	if enabled, ok := policy.FallbackOverrides[strings.ToLower(strings.TrimSpace(domain))]; ok {
		return enabled
	}
	return global
}

func validateConsolePolicy(policy ConsolePolicy) error {
	if policy.RecentWindowDays <= 0 {
		return errors.New("console.recentWindowDays must be positive")
	}
	if policy.RecentLimit <= 0 {
		return errors.New("console.recentLimit must be positive")
	}
	if policy.HistoryPageSize <= 0 {
		return errors.New("console.historyPageSize must be positive")
	}
	return nil
}
