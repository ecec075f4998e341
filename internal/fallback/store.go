// Package fallback holds the demo/offline dataset the console serves when
// the platform API is unreachable and fallback mode is enabled. It is a
// local sqlite database seeded with a deterministic dataset at startup;
// synthesized records get snowflake IDs so they look platform-assigned.
package fallback

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	cashregisterdomain "github.com/smallbiznis/tilldesk/internal/cashregister/domain"
	catalogdomain "github.com/smallbiznis/tilldesk/internal/catalog/domain"
	collectiondomain "github.com/smallbiznis/tilldesk/internal/collection/domain"
	"github.com/smallbiznis/tilldesk/internal/config"
	inventorydomain "github.com/smallbiznis/tilldesk/internal/inventory/domain"
	priceadjustmentdomain "github.com/smallbiznis/tilldesk/internal/priceadjustment/domain"
	purchasingdomain "github.com/smallbiznis/tilldesk/internal/purchasing/domain"
	referencedomain "github.com/smallbiznis/tilldesk/internal/reference/domain"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Store reads and writes the demo dataset.
type Store struct {
	db    *gorm.DB
	genID *snowflake.Node
	log   *zap.Logger
}

// Params configures the fallback store.
type Params struct {
	fx.In

	Cfg   config.Config
	Log   *zap.Logger
	GenID *snowflake.Node
}

// Module wires the fallback store via Fx.
var Module = fx.Module("fallback",
	fx.Provide(New),
)

// New opens the demo database. When fallback mode is disabled it returns
// a nil store; services treat a nil store as fallback-not-available.
func New(p Params) (*Store, error) {
	if !p.Cfg.FallbackEnabled {
		return nil, nil
	}

	db, err := gorm.Open(sqlite.Open(p.Cfg.FallbackDBPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(otelgorm.NewPlugin()); err != nil {
		return nil, err
	}

	store := &Store{
		db:    db,
		genID: p.GenID,
		log:   p.Log.Named("fallback"),
	}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	if err := store.seedIfEmpty(context.Background()); err != nil {
		return nil, err
	}

	store.log.Info("demo dataset ready", zap.String("path", p.Cfg.FallbackDBPath))
	return store, nil
}

// NewWithDB builds a store over an existing gorm handle. Tests use this
// with in-memory sqlite.
func NewWithDB(db *gorm.DB, genID *snowflake.Node, log *zap.Logger) (*Store, error) {
	store := &Store{db: db, genID: genID, log: log.Named("fallback")}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	if err := store.seedIfEmpty(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(
		&priceadjustmentdomain.Adjustment{},
		&inventorydomain.Count{},
		&cashregisterdomain.Session{},
		&purchasingdomain.Order{},
		&purchasingdomain.Payment{},
		&collectiondomain.Collection{},
		&referencedomain.PaymentMethod{},
		&referencedomain.Currency{},
		&catalogdomain.Product{},
	)
}
