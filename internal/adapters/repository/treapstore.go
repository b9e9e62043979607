package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/okian/horary/internal/domain/model"
	"github.com/okian/horary/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: asked-at DESC, then id ASC (deterministic). "less" means listed
// earlier, so in-order traversal yields the most recent question first.

// key orders a record in the treap.
type key struct {
	askedAt int64 // unix nanoseconds
	id      string
}

func keyOf(rec model.Record) key {
	return key{askedAt: rec.Question.AskedAt.UnixNano(), id: rec.Question.ID}
}

// treap node
type node struct {
	k     key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if a should be listed before b.
func less(a, b key) bool {
	if a.askedAt != b.askedAt {
		return a.askedAt > b.askedAt
	}
	return a.id < b.id
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// priorityOf hashes the id so the tree shape does not depend on insertion
// order.
func priorityOf(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func insert(n *node, k key) *node {
	if n == nil {
		return &node{k: k, prio: priorityOf(k.id), size: 1}
	}
	if less(k, n.k) {
		n.left = insert(n.left, k)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, k)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, k key) *node {
	if n == nil {
		return nil
	}
	switch {
	case n.k == k:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, k)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, k)
		}
	case less(k, n.k):
		n.left = deleteNode(n.left, k)
	default:
		n.right = deleteNode(n.right, k)
	}
	fix(n)
	return n
}

// collectRecent appends up to limit records in listing order.
func collectRecent(n *node, limit int, byID map[string]model.Record, out *[]model.Record) {
	if n == nil || len(*out) >= limit {
		return
	}
	collectRecent(n.left, limit, byID, out)
	if len(*out) < limit {
		if rec, ok := byID[n.k.id]; ok {
			*out = append(*out, rec)
		}
	}
	if len(*out) < limit {
		collectRecent(n.right, limit, byID, out)
	}
}

// TreapStore keeps records in memory ordered by the time they were asked.
type TreapStore struct {
	mu   sync.RWMutex
	root *node
	byID map[string]model.Record

	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		byID:                  make(map[string]model.Record),
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics goroutine.
func (s *TreapStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Save implements Store.Save in O(log n) expected time.
func (s *TreapStore) Save(_ context.Context, rec model.Record) error {
	start := time.Now()
	defer func() {
		metrics.RecordRepositorySaveLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if rec.Question.ID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	if old, ok := s.byID[rec.Question.ID]; ok {
		s.root = deleteNode(s.root, keyOf(old))
	}
	s.byID[rec.Question.ID] = rec
	s.root = insert(s.root, keyOf(rec))
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoredQuestions(n)
	return nil
}

// Get returns the record for id.
func (s *TreapStore) Get(_ context.Context, id string) (model.Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.byID[id]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Record{}, ErrNotFound
	}
	return rec, nil
}

// Delete removes the record for id.
func (s *TreapStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	if old, ok := s.byID[id]; ok {
		s.root = deleteNode(s.root, keyOf(old))
		delete(s.byID, id)
	}
	n := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateStoredQuestions(n)
	return nil
}

// Recent returns up to n records, most recently asked first.
func (s *TreapStore) Recent(_ context.Context, n int) ([]model.Record, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Record, 0, min(n, len(s.byID)))
	collectRecent(s.root, n, s.byID, &out)
	return out, nil
}

// Count returns the number of stored questions.
func (s *TreapStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateStoredQuestions(s.Count(ctx))
			}
		}
	}()
}
