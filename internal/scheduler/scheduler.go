// Package scheduler drives the periodic reachability sweep. Each tick probes
// every node in parallel and applies the results as definitive online/offline
// transitions, so nodes that went silent are discovered without anyone
// clicking probe, and offline nodes are noticed when they come back.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/portico-hosting/portico/internal/probe"
	"github.com/portico-hosting/portico/internal/registry"
)

// DefaultInterval is used when the configuration does not set one.
const DefaultInterval = 30 * time.Second

// Scheduler runs the background probe sweep.
type Scheduler struct {
	registry *registry.Registry
	interval time.Duration
	ticker   *time.Ticker
	stop     chan bool
	running  bool
}

// New creates a sweep scheduler with the given interval.
func New(reg *registry.Registry, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		registry: reg,
		interval: interval,
		stop:     make(chan bool),
		running:  false,
	}
}

// Start begins the sweep loop.
func (s *Scheduler) Start() {
	if s.running {
		log.Println("Sweep scheduler already running")
		return
	}

	s.running = true
	s.ticker = time.NewTicker(s.interval)

	log.Printf("Sweep scheduler started - probing all nodes every %s", s.interval)

	go func() {
		// Sweep immediately on start
		s.sweep()

		for {
			select {
			case <-s.ticker.C:
				s.sweep()
			case <-s.stop:
				s.ticker.Stop()
				s.running = false
				log.Println("Sweep scheduler stopped")
				return
			}
		}
	}()
}

// Stop halts the sweep loop.
func (s *Scheduler) Stop() {
	if s.running {
		s.stop <- true
	}
}

// sweep probes every node once. The per-probe timeout lives in the prober;
// the sweep context only bounds the whole round.
func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	results := s.registry.ProbeSweep(ctx)
	if len(results) == 0 {
		return
	}

	online := 0
	for _, result := range results {
		if result.Online {
			online++
		}
	}
	log.Printf("Sweep complete: %d/%d nodes online", online, len(results))
}

// SweepOnce runs a single synchronous sweep, used by the CLI.
func (s *Scheduler) SweepOnce(ctx context.Context) map[string]probe.Result {
	return s.registry.ProbeSweep(ctx)
}
