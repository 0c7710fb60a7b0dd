package securitylog

import (
	"FlexPBX-Admin/internal/domain"
	"FlexPBX-Admin/internal/repository"
	"FlexPBX-Admin/pkg/useragent"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Entry represents a security event queued for persistence, together with
// the raw User-Agent of the request that triggered it.
type Entry struct {
	Event     domain.SecurityEvent
	UserAgent string
}

// RecorderConfig holds configuration for the security event recorder
type RecorderConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of retry attempts for failed writes
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() RecorderConfig {
	return RecorderConfig{
		WorkerCount:     2,
		BufferSize:      500,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// Recorder persists security events asynchronously so that hijack and
// timeout handling never waits on the database. The synchronous zap log
// line is written by the caller before submitting; the recorder owns only
// the durable copy.
type Recorder struct {
	config   RecorderConfig
	storage  repository.Storage
	log      *zap.Logger
	jobQueue chan *Entry
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	mu       sync.RWMutex
}

// NewRecorder creates a new security event recorder
func NewRecorder(storage repository.Storage, log *zap.Logger, config RecorderConfig) *Recorder {
	ctx, cancel := context.WithCancel(context.Background())

	return &Recorder{
		config:   config,
		storage:  storage,
		log:      log,
		jobQueue: make(chan *Entry, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing security events
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return fmt.Errorf("recorder already started")
	}

	r.log.Info("starting security event recorder",
		zap.Int("workers", r.config.WorkerCount),
		zap.Int("buffer_size", r.config.BufferSize),
	)

	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}

	r.started = true
	return nil
}

// Stop gracefully shuts down the recorder, draining the queue
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	r.log.Info("stopping security event recorder")

	r.cancel()
	close(r.jobQueue)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info("security event recorder stopped gracefully")
	case <-time.After(r.config.ShutdownTimeout):
		r.log.Warn("security event recorder shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}

	r.started = false
	return nil
}

// Submit queues a security event for persistence
func (r *Recorder) Submit(entry *Entry) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.started {
		return fmt.Errorf("recorder not started")
	}

	select {
	case r.jobQueue <- entry:
		return nil
	case <-r.ctx.Done():
		return fmt.Errorf("recorder is shutting down")
	default:
		// A full queue must not stall request handling; the zap copy of
		// the event already exists
		r.log.Error("security event queue is full, dropping durable copy",
			zap.String("event_type", entry.Event.EventType),
			zap.Int("queue_size", len(r.jobQueue)),
		)
		return fmt.Errorf("security event queue is full")
	}
}

// worker persists security events with retry logic
func (r *Recorder) worker(workerID int) {
	defer r.wg.Done()

	log := r.log.With(zap.Int("worker_id", workerID))
	log.Debug("security event worker started")

	for {
		select {
		case entry := <-r.jobQueue:
			if entry == nil {
				// Channel closed, worker should exit
				log.Debug("security event worker stopped")
				return
			}

			r.recordWithRetry(log, entry)

		case <-r.ctx.Done():
			// Drain whatever is still queued before exiting; Stop closes
			// the queue, so this loop terminates
			for entry := range r.jobQueue {
				r.recordWithRetry(log, entry)
			}
			log.Debug("security event worker stopped")
			return
		}
	}
}

// recordWithRetry persists a single event with exponential backoff
func (r *Recorder) recordWithRetry(log *zap.Logger, entry *Entry) {
	event := entry.Event
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	enrichDeviceInfo(&event, entry.UserAgent)

	var lastErr error

	for attempt := 1; attempt <= r.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := r.storage.RecordSecurityEvent(ctx, &event)
		cancel()

		if err == nil {
			return
		}

		lastErr = err
		log.Warn("security event write failed",
			zap.String("event_type", event.EventType),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", r.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == r.config.RetryAttempts {
			break
		}

		delay := r.config.RetryDelay * time.Duration(1<<(attempt-1))

		select {
		case <-time.After(delay):
		case <-r.ctx.Done():
			log.Debug("worker shutdown during retry delay")
			return
		}
	}

	log.Error("security event lost after all retries",
		zap.String("event_type", event.EventType),
		zap.String("admin_username", event.AdminUsername),
		zap.Error(lastErr),
	)
}

// enrichDeviceInfo attaches parsed browser/OS/device data to the event
func enrichDeviceInfo(event *domain.SecurityEvent, ua string) {
	if ua == "" {
		return
	}
	parser := useragent.GetGlobalParser()
	if parser == nil {
		return
	}
	info := parser.ParseUserAgent(ua)
	event.Browser = info.Browser
	event.OS = info.OS
	event.DeviceType = info.DeviceType
}

// GetStats returns recorder statistics
func (r *Recorder) GetStats() map[string]interface{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return map[string]interface{}{
		"started":        r.started,
		"queue_length":   len(r.jobQueue),
		"queue_capacity": cap(r.jobQueue),
		"worker_count":   r.config.WorkerCount,
	}
}
