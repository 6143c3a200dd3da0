package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"gympay/config"
	"gympay/internal/domain"
	"gympay/internal/models"

	"golang.org/x/oauth2/clientcredentials"
)

const (
	createPaymentPath = "/api/payments/webhook/mercadopago"
	listPaymentsPath  = "/api/payments"
)

// PaymentRepository stores payments through the gym backend Payments API.
type PaymentRepository struct {
	baseURL string
	client  *http.Client
}

// NewPaymentRepository builds the backend client. When a token URL is
// configured the client authenticates with OAuth2 client credentials.
func NewPaymentRepository(cfg *config.BackendConfig) *PaymentRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	var httpClient *http.Client
	if cfg.TokenURL != "" {
		cc := &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       cfg.Scopes,
		}
		httpClient = cc.Client(context.Background())
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout
	return &PaymentRepository{baseURL: cfg.BaseURL, client: httpClient}
}

// Create posts p. A 409 from the backend means confNumber is already stored and
// is reported as domain.ErrDuplicatePayment.
func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+createPaymentPath, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendWriteFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrBackendWriteFailed, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == http.StatusConflict {
		return fmt.Errorf("confNumber %s: %w", p.ConfNumber, domain.ErrDuplicatePayment)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Backend] POST %s status=%d body=%s", createPaymentPath, resp.StatusCode, string(respBody))
		return fmt.Errorf("%w: status %d", domain.ErrBackendWriteFailed, resp.StatusCode)
	}
	return nil
}

// ListOutstanding returns the payments the backend still considers pending.
func (r *PaymentRepository) ListOutstanding(ctx context.Context) ([]models.OutstandingPayment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+listPaymentsPath+"?status="+string(domain.PaymentStatusPending), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list outstanding payments: %w", err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list outstanding payments: status %d", resp.StatusCode)
	}
	return decodePaymentList(respBody)
}

// decodePaymentList accepts either a bare array or {"data": [...]}.
func decodePaymentList(body []byte) ([]models.OutstandingPayment, error) {
	body = bytes.TrimSpace(body)
	var out []models.OutstandingPayment
	if len(body) > 0 && body[0] == '[' {
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("decode payment list: %w", err)
		}
		return out, nil
	}
	var wrapped struct {
		Data []models.OutstandingPayment `json:"data"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("decode payment list: %w", err)
	}
	return wrapped.Data, nil
}
