//go:build test

package suggest

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"sync"
	"testing"
	"time"

	"github.com/ericl3/autocomplete/pkg/dictionary"
)

var testPrefixes = []string{
	"a", "ab", "abc", "abcd",
	"h", "he", "hel", "hell", "hello",
	"w", "wo", "wor", "worl", "world",
	"p", "pr", "pro", "prog", "program",
	"t", "th", "the", "ther", "there",
	"c", "co", "com", "comp", "computer",
}

var longPatterns = [][]string{
	{"a", "ab", "abc", "abcd", "abcde"},
	{"h", "he", "hel", "hell", "hello"},
	{"w", "wo", "wor", "worl", "world"},
	{"p", "pr", "pro", "prog", "progr", "progra", "program"},
	{"t", "th", "the", "ther", "there"},
	{"c", "co", "com", "comp", "compu", "comput", "computer"},
	{"i", "in", "int", "inte", "inter", "intern", "interna", "internat", "internati", "internatio", "internation", "internationa", "international"},
	{"d", "de", "dev", "deve", "devel", "develo", "develop", "developm", "developme", "developmen", "development"},
}

// leakTestCompleter builds a lazy completer over three generated chunk
// files so the tests carry their own data. Derived prefixes from the
// generated words guarantee some queries actually hit.
func leakTestCompleter(t *testing.T) (*Completer, []string) {
	t.Helper()
	dir := t.TempDir()

	derived := make([]string, 0, 12)
	for id := 1; id <= 3; id++ {
		terms := seededTerms(int64(id), 1500)
		entries := make([]dictionary.Entry, len(terms))
		for i, term := range terms {
			entries[i] = dictionary.Entry{Word: term.Word, Weight: term.Weight}
		}
		if err := dictionary.WriteChunk(filepath.Join(dir, dictionary.ChunkName(id)), entries); err != nil {
			t.Fatalf("chunk write failed: %v", err)
		}
		for i := 0; i < 4; i++ {
			w := terms[i*100].Word
			derived = append(derived, w[:1+i%len(w)])
		}
	}

	completer, err := NewLazyCompleter(dir, 1500, 50000, BackendTrie)
	if err != nil {
		t.Fatalf("completer construction failed: %v", err)
	}
	if err := completer.Initialize(); err != nil {
		completer.Stop()
		t.Fatalf("completer initialization failed: %v", err)
	}
	return completer, append(derived, testPrefixes...)
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000, 2500}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runBasicMemoryTest(t, iterCount)
		})
	}
}

func TestMemoryLeakConcurrent(t *testing.T) {
	configs := []struct {
		workers             int
		iterationsPerWorker int
	}{
		{workers: 1, iterationsPerWorker: 200},
		{workers: 2, iterationsPerWorker: 100},
		{workers: 4, iterationsPerWorker: 50},
		{workers: 8, iterationsPerWorker: 25},
	}

	for _, config := range configs {
		t.Run(fmt.Sprintf("workers_%d_iter_%d", config.workers, config.iterationsPerWorker), func(t *testing.T) {
			runConcurrentMemoryTest(t, config.workers, config.iterationsPerWorker)
		})
	}
}

func TestMemoryStabilityLongRun(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	runLongRunMemoryTest(t, 50, 200)
}

func runBasicMemoryTest(t *testing.T, iterations int) {
	completer, prefixes := leakTestCompleter(t)
	defer completer.Stop()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for i := 0; i < iterations; i++ {
		for _, prefix := range prefixes {
			if _, err := completer.Complete(prefix, 10); err != nil {
				t.Fatalf("Complete(%q): %v", prefix, err)
			}
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc - baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	totalOps := iterations * len(prefixes)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		iterations, totalOps, memDelta, memPerOp, goroutineDelta)

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runConcurrentMemoryTest(t *testing.T, workers, iterationsPerWorker int) {
	memFile, err := os.Create(filepath.Join(t.TempDir(), "concurrent_memory.prof"))
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer memFile.Close()

	completer, _ := leakTestCompleter(t)
	defer completer.Stop()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	opsPerPass := 0
	for _, pattern := range longPatterns {
		opsPerPass += len(pattern)
	}
	totalOps := workers * iterationsPerWorker * opsPerPass

	errCh := make(chan error, workers)
	var wg sync.WaitGroup
	for worker := 0; worker < workers; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < iterationsPerWorker; iter++ {
				for _, pattern := range longPatterns {
					for _, prefix := range pattern {
						if _, err := completer.Complete(prefix, 10); err != nil {
							errCh <- err
							return
						}
					}
				}
			}
		}()
	}
	wg.Wait()

	select {
	case err := <-errCh:
		t.Fatal(err)
	default:
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc - baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("workers=%d iter_per_worker=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		workers, iterationsPerWorker, totalOps, memDelta, memPerOp, goroutineDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 3 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

func runLongRunMemoryTest(t *testing.T, cycles, opsPerCycle int) {
	memFile, err := os.Create(filepath.Join(t.TempDir(), "longrun_stability.prof"))
	if err != nil {
		t.Fatalf("profile file creation failed: %v", err)
	}
	defer memFile.Close()

	completer, _ := leakTestCompleter(t)
	defer completer.Stop()

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	totalOps := 0
	maxMemDelta := int64(0)

	for cycle := 0; cycle < cycles; cycle++ {
		for op := 0; op < opsPerCycle; op++ {
			pattern := longPatterns[op%len(longPatterns)]
			prefix := pattern[op%len(pattern)]
			if _, err := completer.Complete(prefix, 10); err != nil {
				t.Fatalf("Complete(%q): %v", prefix, err)
			}
			totalOps++
		}

		if cycle%10 == 0 {
			var m runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&m)

			memDelta := int64(m.Alloc - baseline.Alloc)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines
			memPerOp := float64(memDelta) / float64(totalOps)

			if memDelta > maxMemDelta {
				maxMemDelta = memDelta
			}

			t.Logf("cycle=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
				cycle, totalOps, memDelta, memPerOp, goroutineDelta)
		}

		if cycle%20 == 0 && cycle > 0 {
			completer.ForceCleanup()
		}

		time.Sleep(5 * time.Millisecond)
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	finalMemDelta := int64(final.Alloc - baseline.Alloc)
	finalGoroutineDelta := finalGoroutines - baselineGoroutines
	finalMemPerOp := float64(finalMemDelta) / float64(totalOps)

	t.Logf("final_summary: cycles=%d total_ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d max_mem_delta=%d",
		cycles, totalOps, finalMemDelta, finalMemPerOp, finalGoroutineDelta, maxMemDelta)

	if err := pprof.WriteHeapProfile(memFile); err != nil {
		t.Errorf("heap profile write failed: %v", err)
	}

	if finalMemPerOp > 500 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", finalMemPerOp)
	}
	if finalGoroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", finalGoroutineDelta)
	}
	if maxMemDelta > 10*1024*1024 {
		t.Errorf("excessive peak memory usage: %d bytes", maxMemDelta)
	}
}
