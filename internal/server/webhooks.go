package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	paymentdomain "github.com/tripshield/tripshield/internal/payment/domain"
)

type paymentWebhookRequest struct {
	EventID   string  `json:"eventId"`
	QuoteID   string  `json:"quoteId"`
	SessionID string  `json:"sessionId"`
	Status    string  `json:"status"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// PaymentWebhook receives confirmation events from payment providers.
// The raw body is stored verbatim for audit before reconciliation.
func (s *Server) PaymentWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req paymentWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	quoteID, err := parseID(req.QuoteID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	outcome, err := s.paymentSvc.Confirm(c.Request.Context(), paymentdomain.ConfirmationEvent{
		Provider:  c.Param("provider"),
		EventID:   req.EventID,
		QuoteID:   quoteID,
		SessionID: req.SessionID,
		Status:    req.Status,
		Amount:    req.Amount,
		Currency:  req.Currency,
		Payload:   body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"outcome": string(outcome)})
}
