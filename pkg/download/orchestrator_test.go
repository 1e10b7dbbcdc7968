package download

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dorbarker/gogetem/pkg/batch"
	"github.com/dorbarker/gogetem/pkg/dedup"
)

// stubFetcher serves scripted per-key responses and records attempt order.
// The response slice is consumed one element per attempt; the last element
// repeats once exhausted, and a missing key always yields an empty payload.
type stubFetcher struct {
	responses map[batch.Key][]string
	attempts  map[batch.Key]int
	calls     []batch.Key
	err       error
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		responses: make(map[batch.Key][]string),
		attempts:  make(map[batch.Key]int),
	}
}

func (f *stubFetcher) FetchBatch(ctx context.Context, key batch.Key) (string, error) {
	f.calls = append(f.calls, key)
	n := f.attempts[key]
	f.attempts[key] = n + 1

	if f.err != nil {
		return "", f.err
	}

	seq := f.responses[key]
	if len(seq) == 0 {
		return "", nil
	}
	if n >= len(seq) {
		n = len(seq) - 1
	}
	return seq[n], nil
}

// memStore is an in-memory dedup store.
type memStore struct {
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Has(ctx context.Context, key string) (bool, error) {
	_, ok := s.data[dedup.Digest(key)]
	return ok, nil
}

func (s *memStore) Put(ctx context.Context, key string, data []byte) error {
	digest := dedup.Digest(key)
	if _, ok := s.data[digest]; !ok {
		s.data[digest] = data
	}
	return nil
}

// failingStore errors on every operation.
type failingStore struct {
	err error
}

func (s failingStore) Has(ctx context.Context, key string) (bool, error) {
	return false, s.err
}

func (s failingStore) Put(ctx context.Context, key string, data []byte) error {
	return s.err
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, newMemStore(), Config{}); err == nil {
		t.Error("Expected error for nil fetcher")
	}
	if _, err := New(newStubFetcher(), nil, Config{}); err == nil {
		t.Error("Expected error for nil store")
	}
	if _, err := New(newStubFetcher(), newMemStore(), Config{}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.RoundDelay != 30*time.Second {
		t.Errorf("RoundDelay = %v, want 30s", cfg.RoundDelay)
	}
	if cfg.PacingDelay != 1*time.Second {
		t.Errorf("PacingDelay = %v, want 1s", cfg.PacingDelay)
	}
	if cfg.MaxRounds != 0 {
		t.Errorf("MaxRounds = %d, want 0 (unbounded)", cfg.MaxRounds)
	}
}

func TestRun_PersistsAllBatches(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.responses["AB123456.1"] = []string{">AB123456.1\nACGT\n"}
	fetcher.responses["CD789012.1"] = []string{">CD789012.1\nGGCC\n"}
	store := newMemStore()

	orch, err := New(fetcher, store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	keys := []batch.Key{"AB123456.1", "CD789012.1"}
	if err := orch.Run(context.Background(), keys); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, key := range keys {
		ok, _ := store.Has(context.Background(), string(key))
		if !ok {
			t.Errorf("Batch %q not persisted", key)
		}
		if fetcher.attempts[key] != 1 {
			t.Errorf("Batch %q attempted %d times, want 1", key, fetcher.attempts[key])
		}
	}

	if string(store.data[dedup.Digest("AB123456.1")]) != ">AB123456.1\nACGT\n" {
		t.Error("Persisted payload does not match fetched text")
	}
}

func TestRun_SkipsPersistedBatches(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.responses["AB123456.1"] = []string{">AB123456.1\nACGT\n"}
	fetcher.responses["CD789012.1"] = []string{">CD789012.1\nGGCC\n"}
	store := newMemStore()

	orch, err := New(fetcher, store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	keys := []batch.Key{"AB123456.1", "CD789012.1"}
	if err := orch.Run(context.Background(), keys); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	// Re-running over the same store must not fetch anything
	if err := orch.Run(context.Background(), keys); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	for _, key := range keys {
		if fetcher.attempts[key] != 1 {
			t.Errorf("Batch %q attempted %d times across two runs, want 1", key, fetcher.attempts[key])
		}
	}
}

func TestRun_RetryConvergence(t *testing.T) {
	// Empty payloads for two rounds, then success
	fetcher := newStubFetcher()
	fetcher.responses["AB123456.1"] = []string{"", "", ">AB123456.1\nACGT\n"}
	store := newMemStore()

	orch, err := New(fetcher, store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := orch.Run(context.Background(), []batch.Key{"AB123456.1"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if fetcher.attempts["AB123456.1"] != 3 {
		t.Errorf("Attempts = %d, want 3 (two failures plus success)", fetcher.attempts["AB123456.1"])
	}

	ok, _ := store.Has(context.Background(), "AB123456.1")
	if !ok {
		t.Error("Batch not persisted after convergence")
	}
	if string(store.data[dedup.Digest("AB123456.1")]) != ">AB123456.1\nACGT\n" {
		t.Error("Persisted payload does not match final round text")
	}
}

func TestRun_TransportErrorFatal(t *testing.T) {
	transportErr := errors.New("connection reset")

	fetcher := newStubFetcher()
	fetcher.err = transportErr
	store := newMemStore()

	orch, err := New(fetcher, store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = orch.Run(context.Background(), []batch.Key{"AB123456.1", "CD789012.1"})
	if !errors.Is(err, transportErr) {
		t.Fatalf("Run error = %v, want transport error", err)
	}

	// The run stops at the first failure; later batches are never attempted
	if len(fetcher.calls) != 1 {
		t.Errorf("Fetch calls = %d, want 1", len(fetcher.calls))
	}
}

func TestRun_StoreErrorFatal(t *testing.T) {
	storeErr := errors.New("disk full")

	fetcher := newStubFetcher()
	orch, err := New(fetcher, failingStore{err: storeErr}, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = orch.Run(context.Background(), []batch.Key{"AB123456.1"})
	if !errors.Is(err, storeErr) {
		t.Fatalf("Run error = %v, want store error", err)
	}
}

func TestRun_FailureOrderPreserved(t *testing.T) {
	fetcher := newStubFetcher()
	fetcher.responses["A.1"] = []string{"", ">A.1\nAAAA\n"}
	fetcher.responses["B.1"] = []string{">B.1\nCCCC\n"}
	fetcher.responses["C.1"] = []string{"", ">C.1\nGGGG\n"}
	store := newMemStore()

	orch, err := New(fetcher, store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := orch.Run(context.Background(), []batch.Key{"A.1", "B.1", "C.1"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Round 1 attempts A, B, C; round 2 attempts the failures A, C in order
	want := []batch.Key{"A.1", "B.1", "C.1", "A.1", "C.1"}
	if len(fetcher.calls) != len(want) {
		t.Fatalf("Fetch calls = %v, want %v", fetcher.calls, want)
	}
	for i := range want {
		if fetcher.calls[i] != want[i] {
			t.Errorf("Call %d = %q, want %q", i, fetcher.calls[i], want[i])
		}
	}
}

func TestRun_EmptyKeyTriviallySatisfied(t *testing.T) {
	fetcher := newStubFetcher()
	store := newMemStore()

	orch, err := New(fetcher, store, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// An empty accession list plans to a single empty key
	keys := batch.Plan(nil, 0)
	if err := orch.Run(context.Background(), keys); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(fetcher.calls) != 0 {
		t.Errorf("Empty key reached the fetcher: %v", fetcher.calls)
	}
}

func TestRun_MaxRounds(t *testing.T) {
	// Always-empty payload never converges
	fetcher := newStubFetcher()
	store := newMemStore()

	orch, err := New(fetcher, store, Config{MaxRounds: 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = orch.Run(context.Background(), []batch.Key{"AB123456.1"})
	if !errors.Is(err, ErrRoundsExhausted) {
		t.Fatalf("Run error = %v, want ErrRoundsExhausted", err)
	}

	if fetcher.attempts["AB123456.1"] != 3 {
		t.Errorf("Attempts = %d, want 3", fetcher.attempts["AB123456.1"])
	}
}

func TestRun_ContextCancelledDuringWait(t *testing.T) {
	fetcher := newStubFetcher()
	store := newMemStore()

	orch, err := New(fetcher, store, Config{RoundDelay: time.Hour})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = orch.Run(ctx, []batch.Key{"AB123456.1"})
	elapsed := time.Since(start)

	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run error = %v, want ErrCancelled", err)
	}
	if elapsed > 5*time.Second {
		t.Errorf("Run took %v to observe cancellation during a 1h wait", elapsed)
	}
}

func TestRun_PacingOnlyAfterAttempts(t *testing.T) {
	keys := []batch.Key{"A.1", "B.1", "C.1"}

	fetcher := newStubFetcher()
	for _, key := range keys {
		fetcher.responses[key] = []string{">" + string(key) + "\nACGT\n"}
	}
	store := newMemStore()

	orch, err := New(fetcher, store, Config{PacingDelay: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	start := time.Now()
	if err := orch.Run(context.Background(), keys); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 150*time.Millisecond {
		t.Errorf("Run took %v, want >= 150ms with pacing after 3 attempts", elapsed)
	}

	// Fully persisted work is all skips, so no pacing applies
	start = time.Now()
	if err := orch.Run(context.Background(), keys); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 50*time.Millisecond {
		t.Errorf("Skip-only run took %v, want < 50ms", elapsed)
	}
}
