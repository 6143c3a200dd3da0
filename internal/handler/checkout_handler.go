package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"gympay/config"
	"gympay/internal/domain"
	"gympay/internal/middleware"
	"gympay/pkg/payment"
	"gympay/pkg/reference"

	"github.com/gin-gonic/gin"
)

type PreferenceCreator interface {
	CreatePreference(ctx context.Context, req payment.PreferenceRequest) (*payment.Preference, error)
}

type CheckoutHandler struct {
	cfg     *config.Config
	gateway PreferenceCreator
}

func NewCheckoutHandler(cfg *config.Config, gateway PreferenceCreator) *CheckoutHandler {
	return &CheckoutHandler{cfg: cfg, gateway: gateway}
}

type checkoutRequest struct {
	ProductID    payment.ID `json:"productId" binding:"required"`
	ProductName  string     `json:"productName" binding:"required"`
	ProductPrice float64    `json:"productPrice" binding:"required,gt=0"`
	UserEmail    string     `json:"userEmail" binding:"omitempty,email"`
	UserDNI      payment.ID `json:"userDni"`
}

// Create registers a checkout preference whose external reference ties the
// eventual payment back to the member and product.
func (h *CheckoutHandler) Create(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	dni := middleware.GetDNI(c)
	if req.UserDNI != "" {
		parsed, err := strconv.ParseInt(req.UserDNI.String(), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userDni must be numeric"})
			return
		}
		dni = parsed
	}
	if dni <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "userDni required"})
		return
	}
	extRef, err := reference.Encode(dni, req.ProductID.String())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid productId"})
		return
	}

	front := h.cfg.MercadoPago.FrontendURL
	pref := payment.PreferenceRequest{
		Items: []payment.Item{{
			ID:         req.ProductID.String(),
			Title:      req.ProductName,
			Quantity:   1,
			CurrencyID: h.cfg.MercadoPago.Currency,
			UnitPrice:  req.ProductPrice,
		}},
		BackURLs: payment.BackURLs{
			Success: front + "/payment/success",
			Failure: front + "/payment/failure",
			Pending: front + "/payment/pending",
		},
		AutoReturn:        "approved",
		NotificationURL:   h.cfg.Server.PublicURL + "/payments/mercadopago/webhook",
		ExternalReference: extRef,
	}
	if req.UserEmail != "" {
		pref.Payer = &payment.Payer{Email: req.UserEmail}
	}

	out, err := h.gateway.CreatePreference(c.Request.Context(), pref)
	if err != nil {
		log.Printf("[MP checkout] product=%s dni=%d: %v", req.ProductID, dni, err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrGatewayRejected) {
			status = http.StatusBadRequest
		} else if errors.Is(err, domain.ErrGatewayUnavailable) {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"success": false, "error": domain.ErrorKind(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preferenceId":     out.ID,
		"initPoint":        out.InitPoint,
		"sandboxInitPoint": out.SandboxInitPoint,
		"transactionId":    extRef,
	})
}
