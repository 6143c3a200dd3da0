package handler

import (
	"log"
	"net/http"
	"strings"

	"gympay/internal/domain"
	"gympay/internal/service"
	"gympay/pkg/payment"

	"github.com/gin-gonic/gin"
)

type VerifyHandler struct {
	reconciler service.PaymentReconciler
}

func NewVerifyHandler(reconciler service.PaymentReconciler) *VerifyHandler {
	return &VerifyHandler{reconciler: reconciler}
}

type verifyRequest struct {
	PaymentID         payment.ID `json:"paymentId"`
	ExternalReference string     `json:"externalReference"`
}

// Verify reconciles a payment synchronously, for the client returning from
// checkout before (or instead of) the webhook.
func (h *VerifyHandler) Verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid json"})
		return
	}
	paymentID := strings.TrimSpace(req.PaymentID.String())
	if paymentID == "" && req.ExternalReference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "paymentId o externalReference requerido"})
		return
	}
	env := service.NotificationEnvelope{
		Kind:   domain.NotificationKindPayment,
		Source: service.SourceVerify,
	}
	if paymentID != "" {
		env.ResourceID = paymentID
	} else {
		env.ExternalReference = req.ExternalReference
	}
	res, err := h.reconciler.Reconcile(c.Request.Context(), env)
	if err != nil {
		log.Printf("[MP verify] payment=%s ref=%s: %v", paymentID, req.ExternalReference, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   domain.ErrorKind(err),
			"message": "No se pudo verificar el pago",
		})
		return
	}
	c.JSON(http.StatusOK, res)
}
