package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gympay/internal/domain"
	"gympay/internal/metrics"
	"gympay/internal/models"
)

var ErrSweepInProgress = errors.New("sweep already in progress")

type OutstandingLister interface {
	ListOutstanding(ctx context.Context) ([]models.OutstandingPayment, error)
}

type PaymentReconciler interface {
	Reconcile(ctx context.Context, n NotificationEnvelope) (*ReconciliationResult, error)
}

// Sweep item outcomes.
const (
	SweepProcessed = "processed"
	SweepUnchanged = "unchanged"
	SweepSkipped   = "skipped"
	SweepFailed    = "failed"
)

type SweepItem struct {
	PaymentID  int64  `json:"paymentId"`
	ConfNumber string `json:"confNumber,omitempty"`
	Outcome    string `json:"outcome"`
	Reason     string `json:"reason,omitempty"`
	Error      string `json:"error,omitempty"`
}

type SweepReport struct {
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
	Checked    int         `json:"checked"`
	Processed  int         `json:"processed"`
	Unchanged  int         `json:"unchanged"`
	Skipped    int         `json:"skipped"`
	Failed     int         `json:"failed"`
	Items      []SweepItem `json:"items"`
}

// Sweeper re-reconciles the payments the backend still lists as outstanding,
// recovering from lost or failed webhooks.
type Sweeper struct {
	lister     OutstandingLister
	reconciler PaymentReconciler
	metrics    *metrics.Metrics
	running    sync.Mutex
}

func NewSweeper(lister OutstandingLister, reconciler PaymentReconciler, m *metrics.Metrics) *Sweeper {
	return &Sweeper{lister: lister, reconciler: reconciler, metrics: m}
}

// Sweep visits every outstanding payment once. Per-item failures are recorded
// in the report; only a failed listing or a cancelled ctx returns an error.
func (s *Sweeper) Sweep(ctx context.Context) (*SweepReport, error) {
	if !s.running.TryLock() {
		return nil, ErrSweepInProgress
	}
	defer s.running.Unlock()

	report := &SweepReport{StartedAt: time.Now(), Items: []SweepItem{}}
	pending, err := s.lister.ListOutstanding(ctx)
	if err != nil {
		log.Printf("[Sweeper] list outstanding: %v", err)
		return nil, err
	}
	log.Printf("[Sweeper] %d outstanding payments", len(pending))

	for _, op := range pending {
		if err := ctx.Err(); err != nil {
			report.FinishedAt = time.Now()
			return report, err
		}
		item := s.sweepOne(ctx, op)
		report.Checked++
		switch item.Outcome {
		case SweepProcessed:
			report.Processed++
		case SweepUnchanged:
			report.Unchanged++
		case SweepSkipped:
			report.Skipped++
		case SweepFailed:
			report.Failed++
		}
		s.metrics.IncSweepItem(item.Outcome)
		report.Items = append(report.Items, item)
	}
	report.FinishedAt = time.Now()
	log.Printf("[Sweeper] done checked=%d processed=%d unchanged=%d skipped=%d failed=%d",
		report.Checked, report.Processed, report.Unchanged, report.Skipped, report.Failed)
	return report, nil
}

func (s *Sweeper) sweepOne(ctx context.Context, op models.OutstandingPayment) SweepItem {
	item := SweepItem{PaymentID: op.ID, ConfNumber: op.ConfNumber}
	if op.ConfNumber == "" {
		item.Outcome = SweepSkipped
		item.Reason = "no gateway id"
		return item
	}
	res, err := s.reconciler.Reconcile(ctx, NotificationEnvelope{
		Kind:       domain.NotificationKindPayment,
		ResourceID: op.ConfNumber,
		Source:     SourceSweep,
	})
	if err != nil {
		log.Printf("[Sweeper] payment %d (gateway %s): %v", op.ID, op.ConfNumber, err)
		item.Outcome = SweepFailed
		item.Reason = domain.ErrorKind(err)
		item.Error = err.Error()
		return item
	}
	if res.Processed {
		item.Outcome = SweepProcessed
		return item
	}
	item.Outcome = SweepUnchanged
	item.Reason = res.Reason
	return item
}

// Run sweeps immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Printf("[Sweeper] running every %s", interval)
	for {
		if _, err := s.Sweep(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[Sweeper] sweep failed: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
