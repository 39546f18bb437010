package analyzer

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestNewWorkerPool_DefaultsToCPUCount(t *testing.T) {
	pool := NewWorkerPool(0)
	if pool.workers <= 0 {
		t.Errorf("Expected positive worker count, got %d", pool.workers)
	}
}

func TestWorkerPool_RunsEveryDocumentJob(t *testing.T) {
	pool := NewWorkerPool(3)
	pool.Start()
	defer pool.Close()

	docs := []string{"cbc.png", "lipid.jpg", "thyroid.pdf", "a1c.png", "bmp.jpg"}
	processed := make(map[string]bool)
	var mu sync.Mutex

	for _, doc := range docs {
		doc := doc
		pool.Submit(func() {
			mu.Lock()
			processed[doc] = true
			mu.Unlock()
		})
	}
	pool.Wait()

	if len(processed) != len(docs) {
		t.Errorf("Expected %d processed documents, got %d", len(docs), len(processed))
	}
}

func TestWorkerPool_StartIsIdempotent(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Start()
	pool.Start()
	defer pool.Close()

	var ran atomic.Bool
	pool.Submit(func() { ran.Store(true) })
	pool.Wait()

	if !ran.Load() {
		t.Error("Expected job to run after repeated Start calls")
	}
}

func TestWorkerPool_Stats(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Start()
	defer pool.Close()

	const jobs = 12
	for i := 0; i < jobs; i++ {
		if !pool.Submit(func() {
			sum := 0
			for j := 0; j < 1000; j++ {
				sum += j
			}
			_ = sum
		}) {
			t.Fatal("Expected Submit to succeed on an open pool")
		}
	}
	pool.Wait()

	stats := pool.GetStats()
	if stats.TotalJobs != jobs || stats.CompletedJobs != jobs {
		t.Errorf("Expected %d total and completed jobs, got %+v", jobs, stats)
	}
	if stats.ActiveWorkers != 0 {
		t.Errorf("Expected no active workers after Wait, got %d", stats.ActiveWorkers)
	}
}

func TestWorkerPool_SubmitAfterClose(t *testing.T) {
	pool := NewWorkerPool(1)
	pool.Start()
	pool.Close()
	pool.Close() // Second close must not panic

	if pool.Submit(func() {}) {
		t.Error("Expected Submit to fail on a closed pool")
	}
}
