package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/tripshield/tripshield/internal/medical"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
	"github.com/tripshield/tripshield/internal/wizard"
	"go.uber.org/zap"
)

type screeningRequest struct {
	TerminalIllness         string `json:"terminalIllness"`
	AdvisedNotToTravel      string `json:"advisedNotToTravel"`
	ChronicConditionHistory string `json:"chronicConditionHistory"`
	RecentTreatment         string `json:"recentTreatment"`
	CurrentMedication       string `json:"currentMedication"`
}

type memberRequest struct {
	FirstName          string           `json:"firstName"`
	LastName           string           `json:"lastName"`
	Email              string           `json:"email"`
	Phone              string           `json:"phone"`
	AddressLine        string           `json:"addressLine"`
	Gender             string           `json:"gender"`
	DateOfBirth        time.Time        `json:"dateOfBirth"`
	Nationality        string           `json:"nationality"`
	CountryOfResidence string           `json:"countryOfResidence"`
	IsPrimary          bool             `json:"isPrimary"`
	Screening          screeningRequest `json:"screening"`
}

type createQuoteRequest struct {
	UserID        string          `json:"userId"`
	Type          string          `json:"type"`
	CoverageType  string          `json:"coverageType"`
	DurationType  string          `json:"durationType"`
	StartDate     time.Time       `json:"startDate"`
	EndDate       time.Time       `json:"endDate"`
	Currency      string          `json:"currency"`
	ReferralCode  string          `json:"referralCode"`
	SnapshotToken string          `json:"snapshotToken"`
	Members       []memberRequest `json:"members"`
}

type memberPriceResponse struct {
	MemberID       string  `json:"memberId"`
	CountryPrice   float64 `json:"countryPrice"`
	AgeFactor      float64 `json:"ageFactor"`
	CoverageFactor float64 `json:"coverageFactor"`
	MedicalFactor  float64 `json:"medicalFactor"`
	DailyTotal     float64 `json:"dailyTotal"`
	MemberTotal    float64 `json:"memberTotal"`
}

type quoteResponse struct {
	QuoteID         string                `json:"quoteId"`
	MembershipID    string                `json:"membershipId"`
	Currency        string                `json:"currency"`
	DayCount        int                   `json:"dayCount"`
	BasePrice       float64               `json:"basePrice"`
	CoverageLoading float64               `json:"coverageLoading"`
	MedicalLoading  float64               `json:"medicalLoading"`
	TotalPrice      float64               `json:"totalPrice"`
	DiscountAmount  float64               `json:"discountAmount"`
	TaxAmount       float64               `json:"taxAmount"`
	TotalWithTax    float64               `json:"totalWithTax"`
	ExchangeRate    float64               `json:"exchangeRate"`
	TotalGBP        float64               `json:"totalGbp"`
	MemberPrices    []memberPriceResponse `json:"memberPrices,omitempty"`
}

type wizardDiffResponse struct {
	First           bool  `json:"first"`
	PlanChanged     bool  `json:"planChanged"`
	DatesChanged    bool  `json:"datesChanged"`
	RescreenMembers []int `json:"rescreenMembers,omitempty"`
}

type createQuoteResponse struct {
	quoteResponse

	SnapshotToken string             `json:"snapshotToken"`
	Changes       wizardDiffResponse `json:"changes"`
}

func (s *Server) CreateQuote(c *gin.Context) {
	allowed, err := s.quoteLimiter.Allow(c.Request.Context(), c.ClientIP())
	if err != nil {
		s.log.Warn("quote rate limit check failed", zap.Error(err))
	} else if !allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
			Type:    "rate_limited",
			Message: "too many quote requests, slow down",
		}})
		return
	}

	var req createQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	previous, err := wizard.Decode(req.SnapshotToken)
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	current := snapshotFromRequest(req)
	diff := wizard.Compare(previous, current)

	token, err := wizard.Encode(current)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	result, err := s.quoteSvc.Generate(c.Request.Context(), quotedomain.GenerateRequest{
		UserID:       s.parseUserID(req.UserID),
		Type:         memberdomain.Type(strings.ToUpper(req.Type)),
		CoverageType: memberdomain.CoverageType(strings.ToUpper(req.CoverageType)),
		DurationType: memberdomain.DurationType(strings.ToUpper(req.DurationType)),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Currency:     req.Currency,
		ReferralCode: req.ReferralCode,
		Members:      membersFromRequest(req.Members),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	response := createQuoteResponse{
		quoteResponse: quoteToResponse(result.Quote, result.MemberPrices),
		SnapshotToken: token,
		Changes: wizardDiffResponse{
			First:           diff.First,
			PlanChanged:     diff.PlanChanged,
			DatesChanged:    diff.DatesChanged,
			RescreenMembers: diff.RescreenMembers,
		},
	}
	c.JSON(http.StatusCreated, response)
}

func (s *Server) GetQuote(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	quote, err := s.quoteSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	prices, err := s.quoteSvc.MemberPrices(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quoteToResponse(*quote, prices))
}

func (s *Server) parseUserID(raw string) snowflake.ID {
	if id, err := parseID(raw); err == nil {
		return id
	}
	// Guest checkout: mint an anonymous user id.
	return s.genID.Generate()
}

func parseID(raw string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(raw))
}

func parseAnswer(raw string) medical.Answer {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "yes", "true":
		return medical.Yes
	case "no", "false":
		return medical.No
	default:
		return medical.Unanswered
	}
}

func membersFromRequest(members []memberRequest) []quotedomain.MemberInput {
	inputs := make([]quotedomain.MemberInput, 0, len(members))
	for _, m := range members {
		inputs = append(inputs, quotedomain.MemberInput{
			FirstName:          m.FirstName,
			LastName:           m.LastName,
			Email:              m.Email,
			Phone:              m.Phone,
			AddressLine:        m.AddressLine,
			Gender:             m.Gender,
			DateOfBirth:        m.DateOfBirth,
			Nationality:        m.Nationality,
			CountryOfResidence: m.CountryOfResidence,
			IsPrimary:          m.IsPrimary,
			Screening: medical.Questionnaire{
				TerminalIllness:         parseAnswer(m.Screening.TerminalIllness),
				AdvisedNotToTravel:      parseAnswer(m.Screening.AdvisedNotToTravel),
				ChronicConditionHistory: parseAnswer(m.Screening.ChronicConditionHistory),
				RecentTreatment:         parseAnswer(m.Screening.RecentTreatment),
				CurrentMedication:       parseAnswer(m.Screening.CurrentMedication),
			},
		})
	}
	return inputs
}

func snapshotFromRequest(req createQuoteRequest) wizard.Snapshot {
	snapshot := wizard.Snapshot{
		Type:         strings.ToUpper(req.Type),
		CoverageType: strings.ToUpper(req.CoverageType),
		DurationType: strings.ToUpper(req.DurationType),
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	}
	for _, m := range req.Members {
		snapshot.Members = append(snapshot.Members, wizard.MemberSnapshot{
			FirstName:          m.FirstName,
			LastName:           m.LastName,
			DateOfBirth:        m.DateOfBirth,
			Gender:             m.Gender,
			Nationality:        m.Nationality,
			CountryOfResidence: m.CountryOfResidence,
			Email:              m.Email,
			Phone:              m.Phone,
			AddressLine:        m.AddressLine,
		})
	}
	return snapshot
}

func quoteToResponse(quote quotedomain.Quote, prices []quotedomain.QuoteMemberPrice) quoteResponse {
	response := quoteResponse{
		QuoteID:         quote.ID.String(),
		MembershipID:    quote.MembershipID.String(),
		Currency:        quote.Currency,
		DayCount:        quote.DayCount,
		BasePrice:       quote.BasePrice,
		CoverageLoading: quote.CoverageLoading,
		MedicalLoading:  quote.MedicalLoading,
		TotalPrice:      quote.TotalPrice,
		DiscountAmount:  quote.DiscountAmount,
		TaxAmount:       quote.TaxAmount,
		TotalWithTax:    quote.TotalWithTax,
		ExchangeRate:    quote.ExchangeRate,
		TotalGBP:        quote.TotalGBP,
	}
	for _, price := range prices {
		response.MemberPrices = append(response.MemberPrices, memberPriceResponse{
			MemberID:       price.MemberID.String(),
			CountryPrice:   price.CountryPrice,
			AgeFactor:      price.AgeFactor,
			CoverageFactor: price.CoverageFactor,
			MedicalFactor:  price.MedicalFactor,
			DailyTotal:     price.DailyTotal,
			MemberTotal:    price.MemberTotal,
		})
	}
	return response
}
