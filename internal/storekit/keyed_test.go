package storekit

import (
	"errors"
	"testing"
	"time"
)

func TestKeyedStaleCommitDropped(t *testing.T) {
	k := NewKeyed[int]()

	older := k.Begin("prod-1")
	newer := k.Begin("prod-1")

	if !k.Commit("prod-1", newer, Entry[int]{Records: []int{2}, FetchedAt: time.Now()}) {
		t.Fatal("latest sequence must apply")
	}
	if k.Commit("prod-1", older, Entry[int]{Records: []int{1}}) {
		t.Fatal("stale sequence must be dropped")
	}

	entry, ok := k.Get("prod-1")
	if !ok || len(entry.Records) != 1 || entry.Records[0] != 2 {
		t.Fatalf("fresh entry must win, got %+v", entry)
	}
}

func TestKeyedClearIsolatesKeys(t *testing.T) {
	k := NewKeyed[string]()

	seqA := k.Begin("A")
	k.Commit("A", seqA, Entry[string]{Records: []string{"a"}})
	seqB := k.Begin("B")
	k.Commit("B", seqB, Entry[string]{Records: []string{"b"}})

	k.Clear("A")

	if _, ok := k.Get("A"); ok {
		t.Fatal("cleared key must miss")
	}
	if entry, ok := k.Get("B"); !ok || entry.Records[0] != "b" {
		t.Fatal("unrelated key must be untouched")
	}
}

func TestKeyedClearFencesInflightFetch(t *testing.T) {
	k := NewKeyed[int]()

	seq := k.Begin("A")
	k.Clear("A")

	if k.Commit("A", seq, Entry[int]{Records: []int{9}}) {
		t.Fatal("fetch issued before clear must not repopulate the key")
	}
}

func TestFailEnvelopeMessage(t *testing.T) {
	res := Fail[int](errors.New("Product not found"))
	if res.Success || res.Err != "Product not found" {
		t.Fatalf("unexpected envelope: %+v", res)
	}

	res = Fail[int](nil)
	if res.Err != DefaultErrorMessage {
		t.Fatalf("expected default message, got %q", res.Err)
	}
}
