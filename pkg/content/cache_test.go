package content

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type countingSource struct {
	fetches atomic.Int32
	fail    atomic.Bool
}

func (s *countingSource) Fetch(ctx context.Context) ([]Entry, error) {
	s.fetches.Add(1)
	if s.fail.Load() {
		return nil, errors.New("unavailable")
	}
	return []Entry{{Rank: intPtr(1), Level: &Level{Name: "A"}}}, nil
}

func (s *countingSource) Packs(ctx context.Context) ([]Pack, error) {
	return []Pack{}, nil
}

func TestCachedFetch(t *testing.T) {
	src := &countingSource{}
	c := NewCached(src)

	for i := 0; i < 3; i++ {
		if _, err := c.Fetch(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if n := src.fetches.Load(); n != 1 {
		t.Errorf("expected 1 fetch, got %d", n)
	}

	c.Invalidate()
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := src.fetches.Load(); n != 2 {
		t.Errorf("expected 2 fetches after invalidation, got %d", n)
	}
}

func TestCachedDoesNotCacheErrors(t *testing.T) {
	src := &countingSource{}
	src.fail.Store(true)
	c := NewCached(src)

	if _, err := c.Fetch(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	src.fail.Store(false)
	if _, err := c.Fetch(context.Background()); err != nil {
		t.Fatalf("expected recovery, got %s", err)
	}
	if n := src.fetches.Load(); n != 2 {
		t.Errorf("expected 2 fetches, got %d", n)
	}
}

type signalInvalidator struct {
	c chan struct{}
}

func (s *signalInvalidator) Invalidate() {
	select {
	case s.c <- struct{}{}:
	default:
	}
}

func TestWatcherInvalidatesOnChange(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	inv := &signalInvalidator{c: make(chan struct{}, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := NewWatcher(logger, dir, inv, 10*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path.Join(dir, "notes.txt"), []byte("ignored"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path.Join(dir, "level.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-inv.c:
	case <-time.After(5 * time.Second):
		t.Error("cache was not invalidated")
	}

	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}
	// second stop must not panic or block
	_ = w.Stop()
}
