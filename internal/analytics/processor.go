package analytics

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/pkg/useragent"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrNotStarted     = errors.New("processor not started")
	ErrAlreadyStarted = errors.New("processor already started")
	ErrQueueFull      = errors.New("analytics queue is full")
)

// ClickData описывает сохраненный клик, ожидающий разбора User-Agent
type ClickData struct {
	ClickID   int64
	UserAgent string
}

// DeviceParser разбирает User-Agent
type DeviceParser interface {
	Parse(userAgent string) *useragent.DeviceInfo
}

// ProcessorInterface нужен резолверу и тестам
type ProcessorInterface interface {
	SubmitClick(clickData *ClickData) error
	Start() error
	Stop() error
	GetStats() map[string]interface{}
}

// ProcessorConfig holds configuration for the analytics processor
type ProcessorConfig struct {
	WorkerCount     int           // Number of worker goroutines
	BufferSize      int           // Size of the job queue buffer
	RetryAttempts   int           // Number of retry attempts for failed jobs
	RetryDelay      time.Duration // Base delay between retries
	ShutdownTimeout time.Duration // Time to wait for graceful shutdown
	AttemptTimeout  time.Duration // Timeout of a single storage update
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() ProcessorConfig {
	return ProcessorConfig{
		WorkerCount:     3,
		BufferSize:      1000,
		RetryAttempts:   3,
		RetryDelay:      time.Second,
		ShutdownTimeout: 30 * time.Second,
		AttemptTimeout:  10 * time.Second,
	}
}

// ConfigFrom переносит настройки из секции analytics
func ConfigFrom(cfg *config.Analytics) ProcessorConfig {
	pc := DefaultConfig()
	if cfg.WorkerCount > 0 {
		pc.WorkerCount = cfg.WorkerCount
	}
	if cfg.BufferSize > 0 {
		pc.BufferSize = cfg.BufferSize
	}
	if cfg.RetryAttempts > 0 {
		pc.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryDelay > 0 {
		pc.RetryDelay = cfg.RetryDelay
	}
	if cfg.ShutdownTimeout > 0 {
		pc.ShutdownTimeout = cfg.ShutdownTimeout
	}
	return pc
}

// Processor обогащает клики информацией об устройстве в фоне.
// Очередь ограничена: при переполнении клик остается без device_type, переход не страдает.
type Processor struct {
	config   ProcessorConfig
	storage  repository.Storage
	parser   DeviceParser
	log      *zap.Logger
	jobQueue chan *ClickData
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	started  bool
	stopped  bool
	mu       sync.RWMutex

	processed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// NewProcessor creates a new analytics processor
func NewProcessor(storage repository.Storage, parser DeviceParser, log *zap.Logger, config ProcessorConfig) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		config:   config,
		storage:  storage,
		parser:   parser,
		log:      log,
		jobQueue: make(chan *ClickData, config.BufferSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins processing analytics data
func (p *Processor) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.stopped {
		return ErrAlreadyStarted
	}

	p.log.Info("starting analytics processor",
		zap.Int("workers", p.config.WorkerCount),
		zap.Int("buffer_size", p.config.BufferSize),
		zap.Int("retry_attempts", p.config.RetryAttempts),
	)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.started = true
	return nil
}

// Stop закрывает очередь и ждет, пока воркеры разберут оставшиеся клики
func (p *Processor) Stop() error {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.started = false
	p.stopped = true
	// Новые клики больше не принимаются
	close(p.jobQueue)
	p.mu.Unlock()

	p.log.Info("stopping analytics processor")

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.log.Info("analytics processor stopped gracefully")
		return nil
	case <-time.After(p.config.ShutdownTimeout):
		p.cancel()
		p.log.Warn("analytics processor shutdown timeout reached")
		return fmt.Errorf("shutdown timeout reached")
	}
}

// SubmitClick ставит клик в очередь без блокировки
func (p *Processor) SubmitClick(clickData *ClickData) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.started {
		return ErrNotStarted
	}

	select {
	case p.jobQueue <- clickData:
		p.log.Debug("click data submitted for processing", zap.Int64("click_id", clickData.ClickID))
		return nil
	default:
		p.dropped.Add(1)
		p.log.Error("analytics queue is full, dropping click data",
			zap.Int64("click_id", clickData.ClickID),
			zap.Int("queue_size", len(p.jobQueue)),
		)
		return ErrQueueFull
	}
}

// worker processes analytics data with retry logic
func (p *Processor) worker(workerID int) {
	defer p.wg.Done()

	log := p.log.With(zap.Int("worker_id", workerID))
	log.Info("analytics worker started")

	for clickData := range p.jobQueue {
		p.processClickWithRetry(log, clickData)
	}

	log.Info("analytics worker stopped")
}

// processClickWithRetry processes a single click with retry logic
func (p *Processor) processClickWithRetry(log *zap.Logger, clickData *ClickData) {
	var lastErr error

	for attempt := 1; attempt <= p.config.RetryAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(p.ctx, p.config.AttemptTimeout)
		err := p.processClick(ctx, clickData)
		cancel()

		if err == nil {
			p.processed.Add(1)
			if attempt > 1 {
				log.Info("click processing succeeded after retry",
					zap.Int64("click_id", clickData.ClickID),
					zap.Int("attempt", attempt),
				)
			}
			return
		}

		lastErr = err
		// Клик мог исчезнуть только вместе со ссылкой, повтор не поможет
		if errors.Is(err, repository.ErrClickNotFound) {
			break
		}

		log.Warn("click processing failed",
			zap.Int64("click_id", clickData.ClickID),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", p.config.RetryAttempts),
			zap.Error(err),
		)

		if attempt == p.config.RetryAttempts {
			break
		}

		// Exponential backoff delay
		delay := p.config.RetryDelay * time.Duration(1<<(attempt-1))

		select {
		case <-time.After(delay):
		case <-p.ctx.Done():
			log.Info("worker shutdown during retry delay")
			p.failed.Add(1)
			return
		}
	}

	p.failed.Add(1)
	log.Error("click processing failed after all retries",
		zap.Int64("click_id", clickData.ClickID),
		zap.Int("attempts", p.config.RetryAttempts),
		zap.Error(lastErr),
	)
}

func (p *Processor) processClick(ctx context.Context, clickData *ClickData) error {
	info := p.parser.Parse(clickData.UserAgent)

	if err := p.storage.UpdateClickDevice(ctx, clickData.ClickID, info.DeviceType, info.Browser, info.OS); err != nil {
		return fmt.Errorf("failed to update click device: %w", err)
	}

	return nil
}

// GetStats returns processor statistics
func (p *Processor) GetStats() map[string]interface{} {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return map[string]interface{}{
		"started":        p.started,
		"queue_length":   len(p.jobQueue),
		"queue_capacity": cap(p.jobQueue),
		"worker_count":   p.config.WorkerCount,
		"retry_attempts": p.config.RetryAttempts,
		"processed":      p.processed.Load(),
		"failed":         p.failed.Load(),
		"dropped":        p.dropped.Load(),
	}
}
