package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"gympay/internal/domain"

	"golang.org/x/oauth2"
)

const defaultBaseURL = "https://api.mercadopago.com"

// MercadoPagoClient issues authenticated calls to the Mercado Pago API.
type MercadoPagoClient struct {
	BaseURL  string
	hasToken bool
	client   *http.Client
}

// NewMercadoPagoClient returns a client whose transport attaches accessToken as
// a bearer token. An empty token yields a client whose calls all fail with
// domain.ErrConfiguration.
func NewMercadoPagoClient(baseURL, accessToken string, timeout time.Duration) *MercadoPagoClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient := oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = timeout
	return &MercadoPagoClient{
		BaseURL:  baseURL,
		hasToken: accessToken != "",
		client:   httpClient,
	}
}

// CreatePreference registers a checkout session and returns its redirect points.
func (c *MercadoPagoClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var out Preference
	if err := c.do(ctx, http.MethodPost, "/checkout/preferences", body, &out); err != nil {
		return nil, fmt.Errorf("create preference: %w", err)
	}
	log.Printf("[MercadoPago] preference %s created external_reference=%s", out.ID, req.ExternalReference)
	return &out, nil
}

// GetPayment fetches the authoritative state of payment id.
func (c *MercadoPagoClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	if id == "" {
		return nil, fmt.Errorf("get payment: %w: empty id", domain.ErrPaymentNotFound)
	}
	var out Payment
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, fmt.Errorf("get payment %s: %w", id, err)
	}
	return &out, nil
}

type searchResponse struct {
	Results []Payment `json:"results"`
}

// SearchPaymentByReference returns the approved payment carrying
// externalReference, or the most recent one when none is approved.
func (c *MercadoPagoClient) SearchPaymentByReference(ctx context.Context, externalReference string) (*Payment, error) {
	q := url.Values{}
	q.Set("external_reference", externalReference)
	q.Set("sort", "date_created")
	q.Set("criteria", "desc")
	var out searchResponse
	if err := c.do(ctx, http.MethodGet, "/v1/payments/search?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("search payments: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, fmt.Errorf("search payments %s: %w", externalReference, domain.ErrPaymentNotFound)
	}
	for i := range out.Results {
		if out.Results[i].Status == "approved" {
			return &out.Results[i], nil
		}
	}
	return &out.Results[0], nil
}

func (c *MercadoPagoClient) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	if !c.hasToken {
		return fmt.Errorf("%w: mercadopago access token not set", domain.ErrConfiguration)
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotFound && method == http.MethodGet:
		return domain.ErrPaymentNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400 && method == http.MethodPost:
		log.Printf("[MercadoPago] %s %s rejected status=%d body=%s", method, path, resp.StatusCode, string(respBody))
		return fmt.Errorf("%w: status %d", domain.ErrGatewayRejected, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: status %d", domain.ErrGatewayUnavailable, resp.StatusCode)
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", domain.ErrGatewayUnavailable, err)
	}
	return nil
}
