package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/evolabz/wob-crawler/internal/scraper"
)

// ErrRunInProgress is returned when a crawl is requested while another
// one is still running. The crawl is strictly sequential: one browsing
// session, one run at a time.
var ErrRunInProgress = errors.New("a crawl run is already in progress")

type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// Runner executes one crawl. Implemented by *scraper.Crawler.
type Runner interface {
	Run(ctx context.Context, maxBooks int) (*scraper.Summary, error)
}

// Run is the tracked state of one crawl invocation.
type Run struct {
	ID          uuid.UUID        `json:"id"`
	MaxBooks    int              `json:"max_books"`
	Status      RunStatus        `json:"status"`
	Summary     *scraper.Summary `json:"summary,omitempty"`
	Error       string           `json:"error,omitempty"`
	StartedAt   time.Time        `json:"started_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
}

// Manager starts crawl runs and tracks their outcomes in memory.
type Manager struct {
	runner Runner
	logger *slog.Logger

	mu     sync.Mutex
	runs   map[uuid.UUID]*Run
	active bool
}

func NewManager(runner Runner, logger *slog.Logger) *Manager {
	return &Manager{
		runner: runner,
		logger: logger.With("component", "job_manager"),
		runs:   make(map[uuid.UUID]*Run),
	}
}

// Start launches a crawl in the background and returns its tracking
// record. Only one run may be active at a time.
func (m *Manager) Start(ctx context.Context, maxBooks int) (Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active {
		return Run{}, ErrRunInProgress
	}

	run := &Run{
		ID:        uuid.New(),
		MaxBooks:  maxBooks,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	m.runs[run.ID] = run
	m.active = true

	go m.execute(ctx, run.ID, maxBooks)

	return *run, nil
}

// Get returns a snapshot of a tracked run.
func (m *Manager) Get(id uuid.UUID) (Run, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[id]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

func (m *Manager) execute(ctx context.Context, id uuid.UUID, maxBooks int) {
	m.logger.Info("crawl run started", "run_id", id, "max_books", maxBooks)

	summary, err := m.runner.Run(ctx, maxBooks)

	m.mu.Lock()
	defer m.mu.Unlock()

	run := m.runs[id]
	now := time.Now()
	run.CompletedAt = &now
	run.Summary = summary
	if err != nil {
		run.Status = StatusFailed
		run.Error = err.Error()
		m.logger.Error("crawl run failed", "run_id", id, "error", err)
	} else {
		run.Status = StatusCompleted
		m.logger.Info("crawl run completed",
			"run_id", id,
			"accepted", summary.Accepted,
			"skipped", summary.Skipped)
	}
	m.active = false
}
