package payment

import (
	"bytes"
	"encoding/json"
	"time"
)

// Item is one line of a checkout preference.
type Item struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Quantity    int     `json:"quantity"`
	CurrencyID  string  `json:"currency_id,omitempty"`
	UnitPrice   float64 `json:"unit_price"`
}

type BackURLs struct {
	Success string `json:"success"`
	Failure string `json:"failure"`
	Pending string `json:"pending"`
}

type Payer struct {
	Email string `json:"email,omitempty"`
}

// PreferenceRequest registers a checkout session with the processor.
type PreferenceRequest struct {
	Items             []Item   `json:"items"`
	Payer             *Payer   `json:"payer,omitempty"`
	BackURLs          BackURLs `json:"back_urls"`
	AutoReturn        string   `json:"auto_return,omitempty"`
	NotificationURL   string   `json:"notification_url"`
	ExternalReference string   `json:"external_reference"`
	StatementDesc     string   `json:"statement_descriptor,omitempty"`
}

type Preference struct {
	ID               string `json:"id"`
	InitPoint        string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Payment is the processor's authoritative view of a payment. It is read-only.
type Payment struct {
	ID                ID      `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	TransactionAmount float64 `json:"transaction_amount"`
	CurrencyID        string  `json:"currency_id"`
	PaymentTypeID     string  `json:"payment_type_id"`
	PaymentMethodID   string  `json:"payment_method_id"`
	Installments      int     `json:"installments"`
	ExternalReference string  `json:"external_reference"`
	DateCreated       string  `json:"date_created"`
	DateApproved      string  `json:"date_approved"`
}

// CreatedAt parses DateCreated; the zero time if absent or malformed.
func (p *Payment) CreatedAt() time.Time { return parseTime(p.DateCreated) }

// ApprovedAt parses DateApproved; the zero time if absent or malformed.
func (p *Payment) ApprovedAt() time.Time { return parseTime(p.DateApproved) }

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ID is a processor identifier. The API returns numbers; notifications carry
// strings. Both decode to the same value.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }
