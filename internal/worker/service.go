// Package worker persists verification results off the request path. The
// verify handler enqueues and returns immediately; persistence failures
// are logged and never affect the response already sent to the caller.
package worker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"

	"truthscan/internal/agent"
	"truthscan/internal/services"
	"truthscan/internal/stream"
)

type job struct {
	title   string
	content string
	result  *agent.VerificationResult
}

// Service manages the background persistence workers
type Service struct {
	results *services.ResultsService
	hub     *stream.Hub
	queue   chan job
	workers int

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	running   bool
	mu        sync.RWMutex
	processed atomic.Int64
	dropped   atomic.Int64
}

// NewService creates a worker service. hub may be nil when the live
// stream is disabled.
func NewService(results *services.ResultsService, hub *stream.Hub, queueSize, workers int) *Service {
	if queueSize < 1 {
		queueSize = 64
	}
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		results: results,
		hub:     hub,
		queue:   make(chan job, queueSize),
		workers: workers,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the persistence workers
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}

	log.Printf("Starting %d persistence workers...", s.workers)
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.run()
		}()
	}
	s.running = true
}

// Stop signals the workers and waits for in-flight saves to finish
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	log.Println("Stopping persistence workers...")
	s.cancel()
	s.wg.Wait()
	s.running = false
	log.Println("Persistence workers stopped")
}

// Enqueue hands a completed result to the workers. Returns false when the
// queue is full; the result is dropped in that case, never blocked on.
func (s *Service) Enqueue(title, content string, result *agent.VerificationResult) bool {
	select {
	case s.queue <- job{title: title, content: content, result: result}:
		return true
	default:
		s.dropped.Add(1)
		log.Printf("persistence queue full, dropping result for %q", title)
		return false
	}
}

func (s *Service) run() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case j := <-s.queue:
			s.persist(j)
		}
	}
}

func (s *Service) persist(j job) {
	id, err := s.results.SaveVerification(j.title, j.content, j.result)
	if err != nil {
		log.Printf("failed to persist verification for %q: %v", j.title, err)
		return
	}
	s.processed.Add(1)

	if s.hub != nil {
		s.hub.Broadcast(stream.Event{
			ID:               id.String(),
			Title:            j.title,
			Verdict:          j.result.Verdict,
			IsFake:           j.result.IsFake,
			Score:            j.result.Score,
			Confidence:       j.result.Confidence,
			ProcessingTimeMS: j.result.ProcessingTimeMS,
		})
	}
}

// IsRunning returns whether the worker service is currently running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// GetStatus reports worker counters for the status endpoint
func (s *Service) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"running":   s.IsRunning(),
		"queued":    len(s.queue),
		"processed": s.processed.Load(),
		"dropped":   s.dropped.Load(),
	}
}
