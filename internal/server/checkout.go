package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createCheckoutRequest struct {
	QuoteID string `json:"quoteId"`
}

type checkoutResponse struct {
	QuoteID   string `json:"quoteId"`
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

func (s *Server) CreateCheckout(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	quoteID, err := parseID(req.QuoteID)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	session, err := s.paymentSvc.CreateCheckout(c.Request.Context(), quoteID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, checkoutResponse{
		QuoteID:   session.QuoteID.String(),
		SessionID: session.SessionID,
		URL:       session.URL,
	})
}
