package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripshield/tripshield/internal/clock"
	"github.com/tripshield/tripshield/internal/config"
	documentrepository "github.com/tripshield/tripshield/internal/document/repository"
	documentservice "github.com/tripshield/tripshield/internal/document/service"
	memberrepository "github.com/tripshield/tripshield/internal/membership/repository"
	memberservice "github.com/tripshield/tripshield/internal/membership/service"
	"github.com/tripshield/tripshield/internal/metrics"
	paymentrepository "github.com/tripshield/tripshield/internal/payment/repository"
	paymentservice "github.com/tripshield/tripshield/internal/payment/service"
	"github.com/tripshield/tripshield/internal/providers/checkout"
	"github.com/tripshield/tripshield/internal/providers/email"
	"github.com/tripshield/tripshield/internal/providers/pdf"
	quoterepository "github.com/tripshield/tripshield/internal/quote/repository"
	quoteservice "github.com/tripshield/tripshield/internal/quote/service"
	ratingservice "github.com/tripshield/tripshield/internal/rating/service"
	"github.com/tripshield/tripshield/internal/seed"
	"go.uber.org/zap"
	"gorm.io/gorm"

	documentdomain "github.com/tripshield/tripshield/internal/document/domain"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	paymentdomain "github.com/tripshield/tripshield/internal/payment/domain"
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
	ratingdomain "github.com/tripshield/tripshield/internal/rating/domain"
)

type stubPDF struct{}

func (stubPDF) GenerateCertificate(context.Context, pdf.CertificateData) (io.Reader, error) {
	return bytes.NewReader([]byte("%PDF-1.7 certificate")), nil
}

type stubEmail struct{}

func (stubEmail) Send(context.Context, email.Message) error { return nil }

type stubCheckout struct{}

func (stubCheckout) CreateSession(_ context.Context, req checkout.SessionRequest) (checkout.Session, error) {
	return checkout.Session{SessionID: "sess_test", URL: "https://pay.example.com/sess_test"}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	stripForUpdate := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(strings.ReplaceAll(sql, "FOR UPDATE", ""))
		}
	}
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("sqlite_strip_for_update", stripForUpdate))
	require.NoError(t, db.Callback().Row().Before("gorm:row").Register("sqlite_strip_for_update_row", stripForUpdate))

	require.NoError(t, db.AutoMigrate(
		&memberdomain.Membership{},
		&memberdomain.Member{},
		&quotedomain.Quote{},
		&quotedomain.QuoteMemberPrice{},
		&quotedomain.ExchangeRate{},
		&quotedomain.ReferralCode{},
		&ratingdomain.CountryRate{},
		&ratingdomain.AgeBandRate{},
		&ratingdomain.CoverageRate{},
		&ratingdomain.MedicalRate{},
		&paymentdomain.Payment{},
		&paymentdomain.PaymentEvent{},
		&paymentdomain.CheckoutSession{},
		&documentdomain.DocumentJob{},
	))
	require.NoError(t, seed.EnsureRatingDefaults(db))

	cfg := config.Config{
		Environment:      "test",
		CheckoutBaseURL:  "https://checkout.example.com",
		DocumentRetryMax: 3,
	}
	log := zap.NewNop()
	node, err := snowflake.NewNode(4)
	require.NoError(t, err)

	rating := ratingservice.NewService(ratingservice.ServiceParam{DB: db, Log: log})
	quotes := quoteservice.NewService(quoteservice.ServiceParam{
		DB:             db,
		Log:            log,
		Node:           node,
		Repo:           quoterepository.Provide(),
		MembershipRepo: memberrepository.Provide(),
		Rating:         rating,
		Policy:         config.NewStaticPricingPolicyHolder(config.DefaultPricingPolicy()),
	})
	memberships := memberservice.NewService(memberservice.ServiceParam{
		DB:   db,
		Log:  log,
		Repo: memberrepository.Provide(),
	})
	documents := documentservice.NewService(documentservice.ServiceParam{
		Config:      cfg,
		DB:          db,
		Log:         log,
		Node:        node,
		Clock:       clock.NewFakeClock(time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)),
		Repo:        documentrepository.Provide(),
		Memberships: memberships,
		PDF:         stubPDF{},
		Email:       stubEmail{},
	})
	payments := paymentservice.NewService(paymentservice.ServiceParam{
		DB:          db,
		Log:         log,
		Node:        node,
		Repo:        paymentrepository.Provide(),
		Quotes:      quoterepository.Provide(),
		Memberships: memberships,
		Documents:   documents,
		Checkout:    stubCheckout{},
	})

	engine := NewEngine(cfg, log, metrics.New())
	return NewServer(ServerParams{
		Gin:           engine,
		Cfg:           cfg,
		Log:           log,
		GenID:         node,
		QuoteSvc:      quotes,
		MembershipSvc: memberships,
		PaymentSvc:    payments,
		DocumentSvc:   documents,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func quotePayload() map[string]any {
	screening := map[string]any{
		"terminalIllness":         "no",
		"advisedNotToTravel":      "no",
		"chronicConditionHistory": "no",
		"recentTreatment":         "no",
		"currentMedication":       "no",
	}
	return map[string]any{
		"type":         "individual",
		"coverageType": "europe",
		"durationType": "annual",
		"startDate":    "2026-09-01T00:00:00Z",
		"currency":     "GBP",
		"members": []map[string]any{{
			"firstName":          "Ada",
			"lastName":           "Byrne",
			"email":              "ada@example.com",
			"dateOfBirth":        "1988-04-02T00:00:00Z",
			"nationality":        "IE",
			"countryOfResidence": "GB",
			"isPrimary":          true,
			"screening":          screening,
		}},
	}
}

func TestQuoteToMembershipFlow(t *testing.T) {
	s := newTestServer(t)

	// Price a quote.
	w := doJSON(t, s, http.MethodPost, "/v1/quotes", quotePayload())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	quote := decodeBody(t, w)
	quoteID, _ := quote["quoteId"].(string)
	membershipID, _ := quote["membershipId"].(string)
	require.NotEmpty(t, quoteID)
	require.NotEmpty(t, membershipID)
	assert.NotEmpty(t, quote["snapshotToken"])
	assert.Greater(t, quote["totalWithTax"].(float64), 0.0)

	changes, _ := quote["changes"].(map[string]any)
	require.NotNil(t, changes)
	assert.Equal(t, true, changes["first"])

	// Open a checkout session; a second request reuses it.
	w = doJSON(t, s, http.MethodPost, "/v1/checkout", map[string]any{"quoteId": quoteID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decodeBody(t, w)
	assert.Equal(t, "sess_test", session["sessionId"])

	w = doJSON(t, s, http.MethodPost, "/v1/checkout", map[string]any{"quoteId": quoteID})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, session["sessionId"], decodeBody(t, w)["sessionId"])

	// The provider confirms payment.
	event := map[string]any{
		"eventId":   "evt_1",
		"quoteId":   quoteID,
		"sessionId": "sess_test",
		"status":    "succeeded",
		"amount":    quote["totalWithTax"],
		"currency":  "GBP",
	}
	w = doJSON(t, s, http.MethodPost, "/webhooks/payment/hosted", event)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "confirmed", decodeBody(t, w)["outcome"])

	// A redelivery of the same event is acknowledged without side effects.
	w = doJSON(t, s, http.MethodPost, "/webhooks/payment/hosted", event)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "duplicate", decodeBody(t, w)["outcome"])

	// Checkout is closed once the membership is paid.
	w = doJSON(t, s, http.MethodPost, "/v1/checkout", map[string]any{"quoteId": quoteID})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Resend runs a synchronous dispatch, after which documents are out.
	w = doJSON(t, s, http.MethodPost, "/v1/memberships/"+membershipID+"/documents/resend", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	w = doJSON(t, s, http.MethodGet, "/v1/memberships/"+membershipID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	membership := decodeBody(t, w)
	assert.Equal(t, string(memberdomain.StatusSent), membership["status"])
	assert.NotEmpty(t, membership["members"])
}

func TestCreateQuote_DeclinedScreening(t *testing.T) {
	s := newTestServer(t)

	payload := quotePayload()
	members := payload["members"].([]map[string]any)
	members[0]["screening"].(map[string]any)["terminalIllness"] = "yes"

	w := doJSON(t, s, http.MethodPost, "/v1/quotes", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestCreateQuote_IncompleteScreening(t *testing.T) {
	s := newTestServer(t)

	payload := quotePayload()
	members := payload["members"].([]map[string]any)
	members[0]["screening"].(map[string]any)["currentMedication"] = ""

	w := doJSON(t, s, http.MethodPost, "/v1/quotes", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
}

func TestCreateQuote_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotes", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetQuote_Unknown(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/v1/quotes/123456789", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentWebhook_UnknownQuote(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/webhooks/payment/hosted", map[string]any{
		"eventId": "evt_x",
		"quoteId": "123456789",
		"status":  "succeeded",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
