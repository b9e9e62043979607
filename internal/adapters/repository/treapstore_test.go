package repository

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/okian/horary/internal/domain/model"
	"go.uber.org/goleak"
)

var base = time.Date(2024, 4, 8, 18, 18, 0, 0, time.UTC)

func rec(id string, offset time.Duration, status model.Status) model.Record {
	return model.Record{
		Question:  model.Question{ID: id, Text: "Will it happen?", AskedAt: base.Add(offset)},
		Status:    status,
		UpdatedAt: base,
	}
}

func ids(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Question.ID
	}
	return out
}

func TestTreapStore_BasicOperations(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer func() { _ = store.Close() }()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	if err := store.Save(ctx, rec("q1", 0, model.StatusPending)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	got, err := store.Get(ctx, "q1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != model.StatusPending {
		t.Errorf("expected pending, got %s", got.Status)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := store.Save(ctx, rec("", 0, model.StatusPending)); !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if _, err := store.Recent(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestTreapStore_UpdateKeepsSingleEntry(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer func() { _ = store.Close() }()

	_ = store.Save(ctx, rec("q1", 0, model.StatusPending))
	_ = store.Save(ctx, rec("q1", 0, model.StatusDone))

	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1 after update, got %d", count)
	}
	list, _ := store.Recent(ctx, 10)
	if len(list) != 1 || list[0].Status != model.StatusDone {
		t.Errorf("expected one done record, got %+v", list)
	}
}

func TestTreapStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer func() { _ = store.Close() }()

	_ = store.Save(ctx, rec("q1", 0, model.StatusDone))
	_ = store.Save(ctx, rec("q2", time.Second, model.StatusDone))

	if err := store.Delete(ctx, "q1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("expected no error deleting a missing id, got %v", err)
	}
	if _, err := store.Get(ctx, "q1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	list, _ := store.Recent(ctx, 10)
	if got := ids(list); fmt.Sprint(got) != "[q2]" {
		t.Errorf("expected [q2], got %v", got)
	}
}

func TestTreapStore_RecentOrdering(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer func() { _ = store.Close() }()

	_ = store.Save(ctx, rec("old", -time.Hour, model.StatusDone))
	_ = store.Save(ctx, rec("new", time.Hour, model.StatusDone))
	_ = store.Save(ctx, rec("b", 0, model.StatusDone))
	_ = store.Save(ctx, rec("a", 0, model.StatusDone))

	list, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"new", "a", "b", "old"}
	if got := ids(list); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	top, _ := store.Recent(ctx, 2)
	if got := ids(top); fmt.Sprint(got) != fmt.Sprint(want[:2]) {
		t.Errorf("expected %v, got %v", want[:2], got)
	}
}

func TestTreapStore_RescheduledQuestionMoves(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer func() { _ = store.Close() }()

	_ = store.Save(ctx, rec("q1", 0, model.StatusDone))
	_ = store.Save(ctx, rec("q2", time.Minute, model.StatusDone))
	_ = store.Save(ctx, rec("q1", time.Hour, model.StatusDone))

	list, _ := store.Recent(ctx, 10)
	if got := ids(list); fmt.Sprint(got) != "[q1 q2]" {
		t.Errorf("expected [q1 q2], got %v", got)
	}
}

func TestTreapStore_RandomizedMatchesSort(t *testing.T) {
	ctx := context.Background()
	store := NewTreapStore(ctx)
	defer func() { _ = store.Close() }()

	rng := rand.New(rand.NewSource(42))
	latest := map[string]time.Duration{}
	for i := 0; i < 2000; i++ {
		id := fmt.Sprintf("q%d", rng.Intn(500))
		off := time.Duration(rng.Intn(1000)) * time.Second
		latest[id] = off
		if err := store.Save(ctx, rec(id, off, model.StatusDone)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	want := make([]string, 0, len(latest))
	for id := range latest {
		want = append(want, id)
	}
	sort.Slice(want, func(i, j int) bool {
		if latest[want[i]] != latest[want[j]] {
			return latest[want[i]] > latest[want[j]]
		}
		return want[i] < want[j]
	})

	list, _ := store.Recent(ctx, len(want)+10)
	if got := ids(list); fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("treap order diverged from sorted order")
	}
	if nsize(store.root) != len(want) {
		t.Errorf("expected subtree size %d, got %d", len(want), nsize(store.root))
	}
}

func TestTreapStore_ConcurrentAccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	store := NewTreapStore(ctx, WithMetricsUpdateInterval(10*time.Millisecond))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				id := fmt.Sprintf("g%d-%d", g, i)
				_ = store.Save(ctx, rec(id, time.Duration(i)*time.Second, model.StatusDone))
				_, _ = store.Get(ctx, id)
				_, _ = store.Recent(ctx, 5)
			}
		}(g)
	}
	wg.Wait()

	if count := store.Count(ctx); count != 800 {
		t.Errorf("expected 800 records, got %d", count)
	}
	_ = store.Close()
	_ = store.Close()
}
