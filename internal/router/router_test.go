package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"gympay/config"
	"gympay/internal/auth"
	"gympay/internal/metrics"
	"gympay/internal/middleware"
	"gympay/internal/repository"
	"gympay/internal/service"
	"gympay/pkg/payment"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type backendRecorder struct {
	mu      sync.Mutex
	records []map[string]interface{}
}

func (b *backendRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/payments/webhook/mercadopago":
		var rec map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&rec)
		b.mu.Lock()
		b.records = append(b.records, rec)
		b.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
	case r.Method == http.MethodGet && r.URL.Path == "/api/payments":
		_, _ = w.Write([]byte(`[]`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *backendRecorder) Records() []map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]map[string]interface{}(nil), b.records...)
}

type testEnv struct {
	cfg        *config.Config
	engine     *gin.Engine
	dispatcher *service.Dispatcher
	backend    *backendRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newLimitedTestEnv(t, 0)
}

func newLimitedTestEnv(t *testing.T, limit int) *testEnv {
	t.Helper()
	gw := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/payments/123":
			_, _ = w.Write([]byte(`{"id":123,"status":"approved","transaction_amount":25000,"currency_id":"ARS",
				"payment_type_id":"credit_card","external_reference":"55-7-1700000000000-ab12cd34",
				"date_approved":"2024-01-01T00:00:00.000Z"}`))
		case "/checkout/preferences":
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"id":"pref-9","init_point":"https://mp/init/9"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(gw.Close)
	backend := &backendRecorder{}
	be := httptest.NewServer(backend)
	t.Cleanup(be.Close)

	cfg := &config.Config{
		Server:      config.ServerConfig{PublicURL: "https://api.gym.test"},
		JWT:         config.JWTConfig{AccessSecret: "jwt-secret", AccessExpiry: time.Minute, Issuer: "gym"},
		MercadoPago: config.MercadoPagoConfig{BaseURL: gw.URL, AccessToken: "APP_USR-x", WebhookSecret: "testsecret", Timeout: 5 * time.Second, FrontendURL: "https://gym.test", Currency: "ARS"},
		Backend:     config.BackendConfig{BaseURL: be.URL, Timeout: 5 * time.Second},
	}
	m := metrics.New()
	gateway := payment.NewMercadoPagoClient(cfg.MercadoPago.BaseURL, cfg.MercadoPago.AccessToken, cfg.MercadoPago.Timeout)
	payments := repository.NewPaymentRepository(&cfg.Backend)
	reconciler := service.NewReconciler(gateway, payments, m, 0)
	d := service.NewDispatcher()
	engine := Setup(cfg, Deps{
		Gateway:    gateway,
		Reconciler: reconciler,
		Sweeper:    service.NewSweeper(payments, reconciler, m),
		Dispatcher: d,
		Limiter:    middleware.NewInMemoryRateLimiter(limit, time.Minute),
		Metrics:    m,
	})
	return &testEnv{cfg: cfg, engine: engine, dispatcher: d, backend: backend}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) bearer(t *testing.T, dni int64, role string) map[string]string {
	t.Helper()
	tok, err := auth.GenerateAccessToken(&e.cfg.JWT, dni, "x@gym.test", role)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestWebhookRecordsApprovedPayment(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodPost, "/payments/mercadopago/webhook", `{"type":"payment","data":{"id":"123"}}`,
		map[string]string{"X-Signature": "testsecret"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.dispatcher.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	records := e.backend.Records()
	if len(records) != 1 {
		t.Fatalf("backend got %d records", len(records))
	}
	rec := records[0]
	if rec["clientDni"] != float64(55) || rec["amount"] != float64(25000) || rec["confNumber"] != "123" ||
		rec["paymentStatus"] != "PAID" || rec["paymentMethod"] != "CREDIT_CARD" {
		t.Errorf("record = %v", rec)
	}
	if rec["createdAt"] != "2024-01-01T00:00:00Z" || rec["expiresAt"] != "2024-01-31T00:00:00Z" {
		t.Errorf("dates = %v / %v", rec["createdAt"], rec["expiresAt"])
	}
}

func TestWebhookWrongSignatureNeverReachesBackend(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/payments/mercadopago/webhook", `{"type":"payment","data":{"id":"123"}}`,
		map[string]string{"x-signature": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	_ = e.dispatcher.Wait(context.Background())
	if n := len(e.backend.Records()); n != 0 {
		t.Errorf("backend got %d records", n)
	}
}

func TestRouteAuth(t *testing.T) {
	e := newTestEnv(t)
	member := e.bearer(t, 55, "MEMBER")
	admin := e.bearer(t, 1, "ADMIN")

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		headers map[string]string
		want    int
	}{
		{"health", http.MethodGet, "/health", "", nil, http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", nil, http.StatusOK},
		{"webhook status", http.MethodGet, "/payments/mercadopago/webhook", "", nil, http.StatusOK},
		{"verify anonymous", http.MethodPost, "/payments/mercadopago/verify", `{"paymentId":"123"}`, nil, http.StatusUnauthorized},
		{"checkout anonymous", http.MethodPost, "/payments/mercadopago/checkout", `{}`, nil, http.StatusUnauthorized},
		{"sweep member", http.MethodPost, "/payments/mercadopago/sweep", "", member, http.StatusForbidden},
		{"sweep admin", http.MethodPost, "/payments/mercadopago/sweep", "", admin, http.StatusOK},
		{"events without log", http.MethodGet, "/payments/mercadopago/events/123", "", admin, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := e.do(tt.method, tt.path, tt.body, tt.headers); w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestCheckoutUsesTokenDNI(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/payments/mercadopago/checkout",
		`{"productId":"7","productName":"Pase libre","productPrice":25000}`, e.bearer(t, 40123456, "MEMBER"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if body["preferenceId"] != "pref-9" || !strings.HasPrefix(body["transactionId"], "40123456-7-") {
		t.Errorf("body = %v", body)
	}
}

func TestVerifyEndToEnd(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodPost, "/payments/mercadopago/verify", `{"paymentId":123}`, e.bearer(t, 55, "MEMBER"))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", w.Code, w.Body.String())
	}
	var res service.ReconciliationResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if !res.Processed || res.Record == nil || res.Record.ClientDNI != 55 {
		t.Errorf("result = %+v", res)
	}
}

func TestRateLimitSparesWebhook(t *testing.T) {
	const limit = 3
	e := newLimitedTestEnv(t, limit)

	statuses := map[int]int{}
	for i := 0; i < limit*4; i++ {
		w := e.do(http.MethodPost, "/payments/mercadopago/webhook", `{"type":"payment","data":{"id":"123"}}`,
			map[string]string{"X-Signature": "testsecret"})
		statuses[w.Code]++
	}
	if statuses[http.StatusOK] != limit*4 {
		t.Errorf("signed webhook statuses = %v, want all 200", statuses)
	}

	member := e.bearer(t, 55, "MEMBER")
	var last int
	for i := 0; i <= limit; i++ {
		last = e.do(http.MethodPost, "/payments/mercadopago/verify", `{"paymentId":"123"}`, member).Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("verify over the limit = %d, want 429", last)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.dispatcher.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}
