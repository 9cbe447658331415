package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/pflag"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/memo"
)

// ================= BENCHMARK =================

func main() {
	ctx := context.Background()

	// ---------------- Cache Config ----------------
	shards := pflag.Int("shards", 8, "number of cache shards")
	capacity := pflag.Int("capacity", 200000, "maximum number of entries")
	preloadKeys := pflag.Int("preload", 100000, "keys written before the run")
	goroutines := pflag.Int("goroutines", 200, "concurrent callers")
	opsPerG := pflag.Int("ops", 5000, "memoized calls per goroutine")
	pflag.Parse()

	fmt.Println("\n================ MEMO CACHE LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Shards       :", *shards)
	fmt.Println("Capacity     :", *capacity)
	fmt.Println("Preload Keys :", *preloadKeys)
	fmt.Println("Goroutines   :", *goroutines)
	fmt.Println("Ops/Goroutine:", *opsPerG)
	fmt.Println("---------------------------------")

	c, err := cache.NewCache(*capacity, 60, cache.WithShards(*shards))
	if err != nil {
		fmt.Println("cache:", err)
		return
	}

	// ---------------- Memoized Computation ----------------
	var computeMu sync.Mutex
	computed := 0
	square := memo.Wrap1(c, "square", func(_ context.Context, n int) (int, error) {
		computeMu.Lock()
		computed++
		computeMu.Unlock()
		return n * n, nil
	})

	// ---------------- Preload Cache ----------------
	fmt.Println("Preloading cache...")
	for i := 0; i < *preloadKeys; i++ {
		square(ctx, i)
	}
	fmt.Println("Preload complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(*goroutines)

	for i := 0; i < *goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < *opsPerG; j++ {
				square(ctx, j%*preloadKeys)
			}
		}(i)
	}

	wg.Wait()

	duration := time.Since(start)
	totalOps := *goroutines * *opsPerG

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Computations     : %d\n", computed)
	fmt.Printf("Cache Size       : %d\n", c.Size(ctx))
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Println("=========================================")
}
