package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gympay/internal/domain"
	"gympay/internal/metrics"
	"gympay/internal/models"
	"gympay/pkg/payment"
	"gympay/pkg/reference"

	"golang.org/x/sync/singleflight"
)

// Reconciliation trigger sources, used for logs and metrics.
const (
	SourceWebhook = "webhook"
	SourceVerify  = "verify"
	SourceSweep   = "sweep"
)

// DefaultMembershipPeriod is how long a paid membership lasts.
const DefaultMembershipPeriod = 30 * 24 * time.Hour

type PaymentGateway interface {
	GetPayment(ctx context.Context, id string) (*payment.Payment, error)
	SearchPaymentByReference(ctx context.Context, externalReference string) (*payment.Payment, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *models.Payment) error
}

// NotificationEnvelope identifies the payment to reconcile. ResourceID wins
// over ExternalReference when both are set.
type NotificationEnvelope struct {
	Kind              string
	ResourceID        string
	ExternalReference string
	Source            string
}

type ReconciliationResult struct {
	Processed     bool                 `json:"processed"`
	Reason        string               `json:"reason,omitempty"`
	PaymentID     string               `json:"paymentId,omitempty"`
	GatewayStatus string               `json:"gatewayStatus,omitempty"`
	Status        domain.PaymentStatus `json:"status,omitempty"`
	Record        *models.Payment      `json:"record,omitempty"`
}

// Reconciler turns gateway payments into backend payment records. Only
// approved payments are written.
type Reconciler struct {
	gateway          PaymentGateway
	store            PaymentStore
	metrics          *metrics.Metrics
	membershipPeriod time.Duration
	now              func() time.Time

	inflight singleflight.Group
}

func NewReconciler(gateway PaymentGateway, store PaymentStore, m *metrics.Metrics, membershipPeriod time.Duration) *Reconciler {
	if membershipPeriod <= 0 {
		membershipPeriod = DefaultMembershipPeriod
	}
	return &Reconciler{
		gateway:          gateway,
		store:            store,
		metrics:          m,
		membershipPeriod: membershipPeriod,
		now:              time.Now,
	}
}

// Reconcile fetches the authoritative state for n and, when approved, records
// it in the backend. Concurrent calls for the same payment in this process
// share one run, and a caller giving up does not cancel it for the others.
// A record the backend already holds is reported as already-recorded, not as
// an error.
func (r *Reconciler) Reconcile(ctx context.Context, n NotificationEnvelope) (*ReconciliationResult, error) {
	source := n.Source
	if source == "" {
		source = SourceVerify
	}
	if err := checkKind(n.Kind); err != nil {
		log.Printf("[Reconciler] source=%s ignoring resource=%s: %v", source, n.ResourceID, err)
		r.metrics.IncReconcile(source, domain.ReasonUnsupportedKind)
		return &ReconciliationResult{Reason: domain.ReasonUnsupportedKind}, nil
	}

	key := "id:" + n.ResourceID
	if n.ResourceID == "" {
		key = "ref:" + n.ExternalReference
	}
	// The shared run outlives any single caller; the gateway and backend
	// clients bound it with their own timeouts.
	ch := r.inflight.DoChan(key, func() (interface{}, error) {
		return r.reconcile(context.WithoutCancel(ctx), n)
	})
	var out singleflight.Result
	select {
	case out = <-ch:
	case <-ctx.Done():
		log.Printf("[Reconciler] source=%s stopped waiting on %s: %v", source, key, ctx.Err())
		r.metrics.IncReconcile(source, "cancelled")
		return nil, ctx.Err()
	}
	if out.Shared {
		log.Printf("[Reconciler] source=%s joined in-flight reconciliation %s", source, key)
	}
	if out.Err != nil {
		r.metrics.IncReconcile(source, domain.ErrorKind(out.Err))
		return nil, out.Err
	}
	res := out.Val.(*ReconciliationResult)
	outcome := res.Reason
	if res.Processed {
		outcome = "processed"
	}
	r.metrics.IncReconcile(source, outcome)
	return res, nil
}

// checkKind reports domain.ErrUnsupportedNotification for anything but payments.
func checkKind(kind string) error {
	if kind != domain.NotificationKindPayment {
		return fmt.Errorf("%w: kind %q", domain.ErrUnsupportedNotification, kind)
	}
	return nil
}

func (r *Reconciler) reconcile(ctx context.Context, n NotificationEnvelope) (*ReconciliationResult, error) {
	var (
		p   *payment.Payment
		err error
	)
	if n.ResourceID == "" && n.ExternalReference != "" {
		p, err = r.gateway.SearchPaymentByReference(ctx, n.ExternalReference)
	} else {
		p, err = r.gateway.GetPayment(ctx, n.ResourceID)
	}
	if err != nil {
		log.Printf("[Reconciler] fetch payment id=%s ref=%s: %v", n.ResourceID, n.ExternalReference, err)
		return nil, err
	}

	res := &ReconciliationResult{
		PaymentID:     p.ID.String(),
		GatewayStatus: p.Status,
		Status:        MapStatus(p.Status),
	}
	if res.Status != domain.PaymentStatusPaid {
		log.Printf("[Reconciler] payment %s status=%s (%s), nothing to record", p.ID, p.Status, p.StatusDetail)
		res.Reason = domain.ReasonNotApproved
		return res, nil
	}

	ref, err := reference.Decode(p.ExternalReference)
	if err != nil {
		log.Printf("[Reconciler] payment %s approved but reference unusable: %v", p.ID, err)
		res.Reason = domain.ReasonBadReference
		return res, nil
	}

	record := r.buildRecord(p, ref)
	if err := r.store.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicatePayment) {
			log.Printf("[Reconciler] payment %s already recorded for client %d", p.ID, ref.SubjectID)
			res.Reason = domain.ReasonAlreadyRecorded
			res.Record = record
			return res, nil
		}
		log.Printf("[Reconciler] payment %s backend write failed: %v", p.ID, err)
		return nil, fmt.Errorf("record payment %s: %w", p.ID, err)
	}
	log.Printf("[Reconciler] payment %s recorded client=%d amount=%.2f expires=%s",
		p.ID, record.ClientDNI, record.Amount, record.ExpiresAt.Format(time.RFC3339))
	res.Processed = true
	res.Record = record
	return res, nil
}

// buildRecord dates the membership from the approval time, then the creation
// time, then now.
func (r *Reconciler) buildRecord(p *payment.Payment, ref reference.Reference) *models.Payment {
	createdAt := p.ApprovedAt()
	if createdAt.IsZero() {
		createdAt = p.CreatedAt()
	}
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	return &models.Payment{
		ClientDNI:     ref.SubjectID,
		Amount:        p.TransactionAmount,
		CreatedAt:     createdAt,
		ExpiresAt:     createdAt.Add(r.membershipPeriod),
		PaymentStatus: domain.PaymentStatusPaid,
		ConfNumber:    p.ID.String(),
		PaymentMethod: MapMethod(p.PaymentTypeID),
		ProductID:     ref.ProductID,
		Currency:      p.CurrencyID,
	}
}
