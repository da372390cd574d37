package service

import (
	"context"
	"log"
	"time"
)

// Sweeper removes expired sessions and reports how many were dropped.
type Sweeper interface {
	Sweep() int
}

// Janitor periodically sweeps expired sessions from the in-memory store.
// Redis expires keys on its own, so the janitor only runs when the memory
// store is the active tier.
type Janitor struct {
	sweeper  Sweeper
	interval time.Duration
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewJanitor creates a new Janitor instance.
func NewJanitor(sweeper Sweeper, interval time.Duration) *Janitor {
	return &Janitor{
		sweeper:  sweeper,
		interval: interval,
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Start begins the janitor's sweep loop. It blocks until Stop is called or
// the context is cancelled, so run it in a goroutine.
func (j *Janitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()
	defer close(j.doneChan)

	log.Printf("Session janitor started with sweep interval: %v", j.interval)

	for {
		select {
		case <-ctx.Done():
			log.Println("Session janitor stopped: context cancelled")
			return
		case <-j.stopChan:
			log.Println("Session janitor stopped: stop signal received")
			return
		case <-ticker.C:
			if removed := j.sweeper.Sweep(); removed > 0 {
				log.Printf("Session janitor removed %d expired sessions", removed)
			}
		}
	}
}

// Stop gracefully stops the janitor.
func (j *Janitor) Stop() {
	close(j.stopChan)
	<-j.doneChan
}
