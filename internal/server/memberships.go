package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
)

type memberResponse struct {
	ID                 string    `json:"id"`
	FirstName          string    `json:"firstName"`
	LastName           string    `json:"lastName"`
	DateOfBirth        time.Time `json:"dateOfBirth"`
	Nationality        string    `json:"nationality"`
	CountryOfResidence string    `json:"countryOfResidence"`
	IsPrimary          bool      `json:"isPrimary"`
}

type membershipResponse struct {
	ID               string           `json:"id"`
	MembershipNumber int64            `json:"membershipNumber"`
	Type             string           `json:"type"`
	CoverageType     string           `json:"coverageType"`
	DurationType     string           `json:"durationType"`
	Status           string           `json:"status"`
	StartDate        time.Time        `json:"startDate"`
	EndDate          time.Time        `json:"endDate"`
	PaidAt           *time.Time       `json:"paidAt,omitempty"`
	SentAt           *time.Time       `json:"sentAt,omitempty"`
	Members          []memberResponse `json:"members"`
}

func (s *Server) GetMembership(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	membership, members, err := s.membershipSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, membershipToResponse(*membership, members))
}

// ResendDocuments re-dispatches the membership document pack. Only
// memberships that have been paid can be resent.
func (s *Server) ResendDocuments(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.documentSvc.Resend(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "dispatched"})
}

func membershipToResponse(membership memberdomain.Membership, members []memberdomain.Member) membershipResponse {
	response := membershipResponse{
		ID:               membership.ID.String(),
		MembershipNumber: membership.MembershipNumber,
		Type:             string(membership.Type),
		CoverageType:     string(membership.CoverageType),
		DurationType:     string(membership.DurationType),
		Status:           string(membership.Status),
		StartDate:        membership.StartDate,
		EndDate:          membership.EndDate,
		PaidAt:           membership.PaidAt,
		SentAt:           membership.SentAt,
	}
	for _, member := range members {
		response.Members = append(response.Members, memberResponse{
			ID:                 member.ID.String(),
			FirstName:          member.FirstName,
			LastName:           member.LastName,
			DateOfBirth:        member.DateOfBirth,
			Nationality:        member.Nationality,
			CountryOfResidence: member.CountryOfResidence,
			IsPrimary:          member.IsPrimary,
		})
	}
	return response
}
