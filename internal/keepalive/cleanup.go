package keepalive

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrCleanupTimeout is joined into Execute's result when cleanup overruns.
var ErrCleanupTimeout = errors.New("cleanup timeout exceeded")

// CleanupManager runs shutdown steps once, newest first, within a timeout.
type CleanupManager struct {
	mu      sync.Mutex
	steps   []cleanupStep
	timeout time.Duration
	once    sync.Once
	err     error
}

type cleanupStep struct {
	name string
	fn   func() error
}

// NewCleanupManager creates a manager. A non-positive timeout means 5s.
func NewCleanupManager(timeout time.Duration) *CleanupManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CleanupManager{timeout: timeout}
}

// Register adds a named shutdown step. Steps run in reverse order of
// registration, like deferred calls.
func (cm *CleanupManager) Register(name string, fn func() error) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.steps = append(cm.steps, cleanupStep{name: name, fn: fn})
}

// Execute runs every step the first time it is called and returns the
// joined step errors. Later calls return the same result.
func (cm *CleanupManager) Execute() error {
	cm.once.Do(func() {
		cm.err = cm.run()
	})
	return cm.err
}

func (cm *CleanupManager) run() error {
	cm.mu.Lock()
	steps := make([]cleanupStep, len(cm.steps))
	copy(steps, cm.steps)
	cm.mu.Unlock()

	if len(steps) == 0 {
		return nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for i := len(steps) - 1; i >= 0; i-- {
			if err := runStep(steps[i]); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(cm.timeout):
		log.Printf("cleanup: timeout after %v, some resources may not have been released", cm.timeout)
		mu.Lock()
		errs = append(errs, ErrCleanupTimeout)
		mu.Unlock()
	}

	mu.Lock()
	defer mu.Unlock()
	return errors.Join(errs...)
}

func runStep(s cleanupStep) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("cleanup: panic in %s: %v", s.name, r)
			err = fmt.Errorf("%s: panic during cleanup: %v", s.name, r)
		}
	}()

	if err := s.fn(); err != nil {
		log.Printf("cleanup: %s failed: %v", s.name, err)
		return fmt.Errorf("%s: %w", s.name, err)
	}
	log.Printf("cleanup: %s done", s.name)
	return nil
}
