package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/api"
	"github.com/krisalay/memo-cache/config"
	"github.com/krisalay/memo-cache/logging"
	"github.com/krisalay/memo-cache/memo"
	"github.com/krisalay/memo-cache/metrics"
)

// ================= BACKING STORE =================

// Workflow is what the demo's slow store returns.
type Workflow struct {
	ID      string
	Name    string
	Deleted bool
}

var errWorkflowNotFound = errors.New("workflow not found")

// WorkflowStore stands in for the persistence layer: every lookup is slow and counted.
type WorkflowStore struct {
	mu    sync.RWMutex
	data  map[string]Workflow
	loads atomic.Int64
}

func NewWorkflowStore() *WorkflowStore {
	return &WorkflowStore{data: make(map[string]Workflow)}
}

func (s *WorkflowStore) Put(w Workflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[w.ID] = w
}

func (s *WorkflowStore) Load(ctx context.Context, id string) (Workflow, error) {
	s.loads.Add(1)
	select {
	case <-ctx.Done():
		return Workflow{}, ctx.Err()
	case <-time.After(20 * time.Millisecond):
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.data[id]
	if !ok {
		return Workflow{}, fmt.Errorf("%w: %s", errWorkflowNotFound, id)
	}
	return w, nil
}

// ================= MAIN =================

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a memocache YAML config file")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(&cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal("demo failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	fmt.Println("\n==================== SYSTEM BOOT ====================")
	fmt.Println("CAPACITY        :", cfg.Cache.Capacity)
	fmt.Println("TTL SECONDS     :", cfg.Cache.TTLSeconds)
	fmt.Println("SHARDS          :", cfg.Cache.Shards)
	fmt.Println("EVICTION POLICY :", cfg.Cache.Eviction)

	// ---------------- Backing Store ----------------
	store := NewWorkflowStore()
	store.Put(Workflow{ID: "wf-1", Name: "nightly-build"})
	store.Put(Workflow{ID: "wf-2", Name: "release"})

	// ---------------- Metrics ----------------
	reg := prometheus.NewRegistry()
	m := metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

	// ---------------- Cache ----------------
	c, err := cache.NewFromConfig(cfg.Cache, cache.WithMetrics(m), cache.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}

	getWorkflow := memo.Wrap1(c, "getWorkflow", store.Load,
		memo.WithLogger(logger), memo.WithSingleFlight())

	// ====================================================
	fmt.Println("\n==================== 1) CACHE MISS ====================")
	w, err := getWorkflow(ctx, "wf-1")
	if err != nil {
		return err
	}
	fmt.Printf("MEMO   → getWorkflow(wf-1) = %+v (store loads: %d)\n", w, store.loads.Load())

	// ====================================================
	fmt.Println("\n==================== 2) CACHE HIT ====================")
	w, _ = getWorkflow(ctx, "wf-1")
	fmt.Printf("MEMO   → getWorkflow(wf-1) = %+v (store loads: %d)\n", w, store.loads.Load())

	// ====================================================
	fmt.Println("\n==================== 3) ERRORS ARE NOT CACHED ====================")
	_, err = getWorkflow(ctx, "wf-404")
	fmt.Println("MEMO   → getWorkflow(wf-404) error =", err)
	fmt.Println("CACHE  → size =", c.Size(ctx))

	// ====================================================
	fmt.Println("\n==================== 4) SINGLEFLIGHT ====================")
	before := store.loads.Load()
	wg := sync.WaitGroup{}
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w, _ := getWorkflow(ctx, "wf-2")
			fmt.Printf("GOROUTINE-%d → getWorkflow(wf-2) = %s\n", id, w.Name)
		}(i)
	}
	wg.Wait()
	fmt.Println("STORE  → loads for wf-2 =", store.loads.Load()-before)

	// ====================================================
	fmt.Println("\n==================== 5) TTL EXPIRATION ====================")
	short, err := cache.NewCache(10, 1, cache.WithLogger(logger))
	if err != nil {
		return err
	}
	if err := short.Set(ctx, "x", "temp-value"); err != nil {
		return err
	}
	fmt.Println("CACHE  → SET x (TTL = 1s)")
	time.Sleep(1100 * time.Millisecond)
	_, err = short.Get(ctx, "x")
	fmt.Println("CACHE  → GET x after TTL =", errors.Is(err, api.ErrNotFound))

	// ====================================================
	fmt.Println("\n==================== 6) EVICTION ====================")
	for i := 0; i < cfg.Cache.Capacity+5; i++ {
		if err := c.Set(ctx, fmt.Sprintf("k%d", i), i); err != nil {
			return err
		}
	}
	fmt.Println("CACHE  → size after overfill =", c.Size(ctx))

	// ====================================================
	fmt.Println("\n==================== 7) CLEAR ====================")
	if err := c.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("CACHE  → size after clear =", c.Size(ctx))

	// ====================================================
	return printMetrics(reg)
}

func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	fmt.Println("\n==================== METRICS ====================")
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			fmt.Printf("%-40s: %.0f\n", mf.GetName(), metric.GetCounter().GetValue())
		}
	}
	return nil
}
