package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	documentdomain "github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	paymentdomain "github.com/tripshield/tripshield/internal/payment/domain"
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var ErrInvalidRequest = errors.New("invalid_request")

// ErrorHandlingMiddleware maps domain errors attached to the gin context
// onto one JSON error shape.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, memberdomain.ErrInvalidType),
		errors.Is(err, memberdomain.ErrInvalidCoverage),
		errors.Is(err, memberdomain.ErrInvalidDuration),
		errors.Is(err, memberdomain.ErrMemberLimit),
		errors.Is(err, memberdomain.ErrNoMembers),
		errors.Is(err, memberdomain.ErrPrimaryMember),
		errors.Is(err, memberdomain.ErrMissingDateOfBirth),
		errors.Is(err, memberdomain.ErrInvalidTripDates),
		errors.Is(err, quotedomain.ErrInvalidDayCount),
		errors.Is(err, quotedomain.ErrUnknownCurrency),
		errors.Is(err, paymentdomain.ErrMissingEventID):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}

	case errors.Is(err, quotedomain.ErrScreeningIncomplete):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "screening_incomplete",
			Message: "medical screening must be completed for every member",
		}
	case errors.Is(err, quotedomain.ErrMemberDeclined):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "member_declined",
			Message: "cover cannot be offered for one or more members",
		}
	case errors.Is(err, documentdomain.ErrNoRecipient):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "no_recipient",
			Message: "the primary member has no email address",
		}

	case errors.Is(err, memberdomain.ErrNotFound),
		errors.Is(err, quotedomain.ErrNotFound),
		errors.Is(err, paymentdomain.ErrUnknownQuote):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: err.Error(),
		}

	case errors.Is(err, paymentdomain.ErrAlreadyPaid),
		errors.Is(err, paymentdomain.ErrInvalidAmount),
		errors.Is(err, memberdomain.ErrInvalidTransition),
		errors.Is(err, memberdomain.ErrInvalidStatus),
		errors.Is(err, documentdomain.ErrNotIssuable):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}
