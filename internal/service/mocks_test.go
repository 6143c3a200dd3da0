package service

import (
	"context"
	"sync"

	"gympay/internal/models"
	"gympay/pkg/payment"
)

type mockGateway struct {
	GetPaymentFunc func(ctx context.Context, id string) (*payment.Payment, error)
	SearchFunc     func(ctx context.Context, ref string) (*payment.Payment, error)
}

func (m *mockGateway) GetPayment(ctx context.Context, id string) (*payment.Payment, error) {
	return m.GetPaymentFunc(ctx, id)
}

func (m *mockGateway) SearchPaymentByReference(ctx context.Context, ref string) (*payment.Payment, error) {
	return m.SearchFunc(ctx, ref)
}

type mockStore struct {
	mu        sync.Mutex
	CreateErr error
	created   []*models.Payment
}

func (m *mockStore) Create(ctx context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, p)
	return m.CreateErr
}

func (m *mockStore) Created() []*models.Payment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Payment(nil), m.created...)
}

type mockLister struct {
	ListFunc func(ctx context.Context) ([]models.OutstandingPayment, error)
}

func (m *mockLister) ListOutstanding(ctx context.Context) ([]models.OutstandingPayment, error) {
	return m.ListFunc(ctx)
}

type mockReconciler struct {
	ReconcileFunc func(ctx context.Context, n NotificationEnvelope) (*ReconciliationResult, error)
}

func (m *mockReconciler) Reconcile(ctx context.Context, n NotificationEnvelope) (*ReconciliationResult, error) {
	return m.ReconcileFunc(ctx, n)
}
