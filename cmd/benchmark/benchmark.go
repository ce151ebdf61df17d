package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	cache "github.com/krisalay/memo-cache"
	"github.com/krisalay/memo-cache/expiration"
	"github.com/krisalay/memo-cache/types"
)

var (
	stalenessFlag = flag.String("staleness", "lazy", "strict or lazy")
	ttlFlag       = flag.Duration("ttl", 50*time.Millisecond, "entry TTL")
	latencyFlag   = flag.Duration("latency", 5*time.Millisecond, "simulated producer latency")
)

// ================= PRODUCER =================

// producerCalls counts every producer invocation across all keys.
var producerCalls atomic.Int64

func produce(_ context.Context, args types.Args) (any, error) {
	producerCalls.Add(1)
	time.Sleep(*latencyFlag)
	n, _ := args.Get("n")
	return n, nil
}

// ================= BENCHMARK =================

func main() {
	flag.Parse()
	defer glog.Flush()

	ctx := context.Background()

	staleness, err := expiration.ParseStaleness(*stalenessFlag)
	if err != nil {
		glog.Fatal(err)
	}

	// ---------------- Cache Config ----------------
	const (
		shards      = 8
		preloadKeys = 1000
		goroutines  = 200
		opsPerG     = 5000
	)

	fmt.Println("\n================ MEMO CACHE LOAD BENCHMARK =================")
	fmt.Println("CONFIG")
	fmt.Println("---------------------------------")
	fmt.Println("Staleness    :", staleness)
	fmt.Println("Shards       :", shards)
	fmt.Println("TTL          :", *ttlFlag)
	fmt.Println("Latency      :", *latencyFlag)
	fmt.Println("Preload Keys :", preloadKeys)
	fmt.Println("Goroutines   :", goroutines)
	fmt.Println("Ops/Goroutine:", opsPerG)
	fmt.Println("---------------------------------")

	store := cache.NewAutoStore(staleness, cache.WithShards(shards), cache.WithSweepConcurrency(16))

	// ---------------- Preload Cache ----------------
	fmt.Println("Preloading cache...")
	for i := 0; i < preloadKeys; i++ {
		key := fmt.Sprintf("key-%d", i)
		err := store.Set(ctx, key, *ttlFlag, produce,
			cache.WithValue(i), cache.WithArgs(types.Args{"n": i}))
		if err != nil {
			glog.Fatal(err)
		}
	}
	fmt.Println("Preload complete.")

	// ---------------- Load Test ----------------
	fmt.Println("Running concurrency benchmark...")

	var failures atomic.Int64
	start := time.Now()

	wg := sync.WaitGroup{}
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func(id int) {
			defer wg.Done()
			for j := 0; j < opsPerG; j++ {
				key := fmt.Sprintf("key-%d", (id+j)%preloadKeys)
				if _, err := store.Get(ctx, key); err != nil {
					failures.Add(1)
				}
			}
		}(i)
	}

	wg.Wait()
	duration := time.Since(start)
	store.Close()

	totalOps := goroutines * opsPerG

	fmt.Println("\n================ RESULTS =================")
	fmt.Printf("Total Operations : %d\n", totalOps)
	fmt.Printf("Failed Reads     : %d\n", failures.Load())
	fmt.Printf("Producer Calls   : %d\n", producerCalls.Load())
	fmt.Printf("Total Time       : %v\n", duration)
	fmt.Printf("Throughput       : %.2f ops/sec\n", float64(totalOps)/duration.Seconds())
	fmt.Println("=========================================")
}
