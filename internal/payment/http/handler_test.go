package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/catalog"
	"github.com/nekogravitycat/stay-booking-backend/internal/payment"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/clock"
	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/daterange"
	"github.com/nekogravitycat/stay-booking-backend/internal/pricing"
	"github.com/nekogravitycat/stay-booking-backend/internal/reservation"
)

func TestReceiveEvent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, _ := test.NewNullLogger()

	cat := catalog.NewMemoryCatalog(catalog.PricingInfo{
		PropertyID: "prop-1", OwnerID: "owner-1", NightlyRate: decimal.NewFromInt(100), Currency: "SAR", MaxGuests: 2,
	})
	svc := reservation.NewService(
		reservation.NewMemoryRepository(), cat, pricing.NewCalculator(pricing.DefaultPolicy()), nil,
		clock.NewFixed(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)), log, reservation.Policy{},
	)
	stay, err := daterange.Parse("2025-01-01", "2025-01-03")
	require.NoError(t, err)
	r, err := svc.CreateReservation(context.Background(), reservation.CreateRequest{
		GuestID: "guest-1", PropertyID: "prop-1", Stay: stay, Occupancy: reservation.Occupancy{Adults: 1},
	})
	require.NoError(t, err)

	hash, err := auth.HashKey("webhook-secret", bcrypt.MinCost)
	require.NoError(t, err)
	verifier, err := auth.NewKeyVerifier(hash)
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/v1"), NewHandler(payment.NewReconciler(svc, nil, log)), auth.WebhookKeyRequired(verifier))

	post := func(body any, key string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		_ = json.NewEncoder(&buf).Encode(body)
		req := httptest.NewRequest(http.MethodPost, "/v1/payments/events", &buf)
		req.Header.Set("Content-Type", "application/json")
		if key != "" {
			req.Header.Set("X-Webhook-Key", key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	event := gin.H{"event_id": "evt-1", "reservation_id": r.ID, "outcome": "success", "occurred_at": "2024-12-01T10:00:00Z"}

	t.Run("Webhook: Missing or wrong key", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, post(event, "").Code)
		assert.Equal(t, http.StatusUnauthorized, post(event, "guess").Code)
	})

	t.Run("Webhook: Malformed body", func(t *testing.T) {
		w := post(gin.H{"event_id": "evt-x", "reservation_id": r.ID, "outcome": "refunded"}, "webhook-secret")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Webhook: Applied then absorbed", func(t *testing.T) {
		w := post(event, "webhook-secret")
		require.Equal(t, http.StatusAccepted, w.Code)
		var resp ResultResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(payment.ResultApplied), resp.Result)

		w = post(event, "webhook-secret")
		require.Equal(t, http.StatusAccepted, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(payment.ResultAlreadyApplied), resp.Result)
	})

	t.Run("Webhook: Unknown reservation is accepted", func(t *testing.T) {
		w := post(gin.H{"event_id": "evt-2", "reservation_id": "missing", "outcome": "failure"}, "webhook-secret")
		require.Equal(t, http.StatusAccepted, w.Code)
	})
}
