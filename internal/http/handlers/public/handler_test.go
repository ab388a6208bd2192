package public

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/slotmail/internal/config"
	"github.com/slotmail/internal/constants"
	"github.com/slotmail/internal/models"
	"github.com/slotmail/internal/provider"
	"github.com/slotmail/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test"

type publicFixture struct {
	handler  *Handler
	engine   *gin.Engine
	campaign *models.Campaign
	route    models.Route
	industry models.Industry
	user     *models.User
	rival    *models.User
}

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupPublicHandlerTest(t *testing.T) *publicFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })

	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	route := models.Route{ZipCode: "30301", Name: "Midtown", Households: 3000, IsActive: true}
	industry := models.Industry{Name: "Roofing", IsActive: true}
	user := &models.User{Email: "owner@example.com", Status: constants.UserStatusActive}
	rival := &models.User{Email: "rival@example.com", Status: constants.UserStatusActive}
	for _, item := range []interface{}{&route, &industry, user, rival} {
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	campaign := &models.Campaign{
		Name:          "May Mailer",
		MailDate:      now.AddDate(0, 0, 30),
		PrintDeadline: now.AddDate(0, 0, 20),
		Status:        constants.CampaignStatusBookingOpen,
		TotalSlots:    1,
	}
	if err := db.Omit("Routes", "Industries").Create(campaign).Error; err != nil {
		t.Fatalf("create campaign failed: %v", err)
	}
	if err := db.Model(campaign).Association("Routes").Replace([]models.Route{route}); err != nil {
		t.Fatalf("attach routes failed: %v", err)
	}
	if err := db.Model(campaign).Association("Industries").Replace([]models.Industry{industry}); err != nil {
		t.Fatalf("attach industries failed: %v", err)
	}

	cfg := config.Default()
	cfg.PaymentWebhook.Secret = testWebhookSecret
	container := provider.Wire(cfg, storage.NewLocalStore(t.TempDir(), "/uploads"), nil, func() time.Time { return now })
	h := New(container)

	r := gin.New()
	authed := r.Group("/", func(c *gin.Context) {
		var uid uint
		if _, err := fmt.Sscanf(c.GetHeader("X-Test-User"), "%d", &uid); err == nil {
			c.Set("user_id", uid)
		}
		c.Next()
	})
	authed.GET("/campaigns/:id/slots", h.GetSlotGrid)
	authed.POST("/bookings/quote", h.QuoteBooking)
	authed.POST("/bookings", h.CreateBooking)
	authed.GET("/bookings", h.ListMyBookings)
	authed.POST("/bookings/:id/cancel", h.CancelMyBooking)
	r.POST("/payments/webhook", h.PaymentWebhook)

	return &publicFixture{
		handler:  h,
		engine:   r,
		campaign: campaign,
		route:    route,
		industry: industry,
		user:     user,
		rival:    rival,
	}
}

func (f *publicFixture) do(t *testing.T, method, path string, userID uint, body interface{}) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set("X-Test-User", fmt.Sprintf("%d", userID))
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return w, resp
}

func (f *publicFixture) webhook(t *testing.T, payload map[string]interface{}, secret string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(PaymentSignatureHeader, hex.EncodeToString(SignPaymentPayload(secret, body)))
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal webhook response failed: %v", err)
	}
	return w, resp
}

func TestCreateBookingPayAndSlotTaken(t *testing.T) {
	f := setupPublicHandlerTest(t)
	cell := map[string]interface{}{
		"campaign_id": f.campaign.ID,
		"route_id":    f.route.ID,
		"industry_id": f.industry.ID,
		"quantity":    1,
	}

	_, resp := f.do(t, http.MethodPost, "/bookings", f.user.ID, cell)
	if resp.StatusCode != 0 {
		t.Fatalf("create booking failed: %+v", resp)
	}
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode booking failed: %v", err)
	}
	if created.Booking.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("payment status = %s", created.Booking.PaymentStatus)
	}

	w, resp := f.webhook(t, map[string]interface{}{
		"type":       constants.PaymentEventPaid,
		"booking_id": created.Booking.ID,
		"amount":     created.Booking.Amount.String(),
		"reference":  "pi_1",
	}, "wrong-secret")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature want 401 got %d", w.Code)
	}

	w, resp = f.webhook(t, map[string]interface{}{
		"type":       constants.PaymentEventPaid,
		"booking_id": created.Booking.ID,
		"amount":     created.Booking.Amount.String(),
		"reference":  "pi_1",
	}, testWebhookSecret)
	if w.Code != http.StatusOK || resp.StatusCode != 0 {
		t.Fatalf("webhook failed: %d %+v", w.Code, resp)
	}

	_, resp = f.do(t, http.MethodPost, "/bookings", f.rival.ID, cell)
	if resp.StatusCode != 409 || resp.Msg != "this slot has already been booked" {
		t.Fatalf("rival should hit slot taken, got %+v", resp)
	}

	_, resp = f.do(t, http.MethodGet, fmt.Sprintf("/campaigns/%d/slots", f.campaign.ID), f.user.ID, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("slot grid failed: %+v", resp)
	}
	var grid struct {
		Slots []struct {
			State string `json:"state"`
		} `json:"slots"`
	}
	if err := json.Unmarshal(resp.Data, &grid); err != nil {
		t.Fatalf("decode grid failed: %v", err)
	}
	if len(grid.Slots) != 1 || grid.Slots[0].State != constants.SlotStateBooked {
		t.Fatalf("unexpected grid: %+v", grid)
	}
}

func TestQuoteBookingInvalidQuantity(t *testing.T) {
	f := setupPublicHandlerTest(t)
	_, resp := f.do(t, http.MethodPost, "/bookings/quote", f.user.ID, map[string]interface{}{
		"campaign_id": f.campaign.ID,
		"quantity":    5,
	})
	if resp.StatusCode != 400 {
		t.Fatalf("want 400 got %+v", resp)
	}
}

func TestCreateBookingRequiresUser(t *testing.T) {
	f := setupPublicHandlerTest(t)
	_, resp := f.do(t, http.MethodPost, "/bookings", 0, map[string]interface{}{
		"campaign_id": f.campaign.ID,
		"route_id":    f.route.ID,
		"industry_id": f.industry.ID,
		"quantity":    1,
	})
	if resp.StatusCode != 401 {
		t.Fatalf("want 401 got %+v", resp)
	}
}

func TestCancelOtherUsersBookingNotFound(t *testing.T) {
	f := setupPublicHandlerTest(t)
	_, resp := f.do(t, http.MethodPost, "/bookings", f.user.ID, map[string]interface{}{
		"campaign_id": f.campaign.ID,
		"route_id":    f.route.ID,
		"industry_id": f.industry.ID,
		"quantity":    2,
	})
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode booking failed: %v", err)
	}

	_, resp = f.do(t, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", created.Booking.ID), f.rival.ID, nil)
	if resp.StatusCode != 404 {
		t.Fatalf("want 404 got %+v", resp)
	}
	_, resp = f.do(t, http.MethodPost, fmt.Sprintf("/bookings/%d/cancel", created.Booking.ID), f.user.ID, nil)
	if resp.StatusCode != 0 {
		t.Fatalf("owner cancel failed: %+v", resp)
	}
}

func TestPaymentWebhookUnknownBooking(t *testing.T) {
	f := setupPublicHandlerTest(t)
	w, resp := f.webhook(t, map[string]interface{}{
		"type":       constants.PaymentEventFailed,
		"booking_no": "BK-none",
		"reference":  "pi_x",
	}, testWebhookSecret)
	if w.Code != http.StatusNotFound || resp.StatusCode != 404 {
		t.Fatalf("want 404 got %d %+v", w.Code, resp)
	}
}

func TestVerifyPaymentSignature(t *testing.T) {
	body := []byte(`{"type":"payment.paid"}`)
	sig := hex.EncodeToString(SignPaymentPayload("s3cret", body))
	if !VerifyPaymentSignature("s3cret", body, sig) {
		t.Fatalf("valid signature rejected")
	}
	if !VerifyPaymentSignature("s3cret", body, "sha256="+sig) {
		t.Fatalf("prefixed signature rejected")
	}
	if VerifyPaymentSignature("s3cret", body, "zz") {
		t.Fatalf("garbage signature accepted")
	}
	if VerifyPaymentSignature("", body, sig) {
		t.Fatalf("empty secret must reject")
	}
}

func TestPaymentWebhookResolvesByBookingNo(t *testing.T) {
	f := setupPublicHandlerTest(t)
	_, resp := f.do(t, http.MethodPost, "/bookings", f.user.ID, map[string]interface{}{
		"campaign_id": f.campaign.ID,
		"route_id":    f.route.ID,
		"industry_id": f.industry.ID,
		"quantity":    1,
	})
	if resp.StatusCode != 0 {
		t.Fatalf("create booking failed: %+v", resp)
	}
	var created struct {
		Booking models.Booking `json:"booking"`
	}
	if err := json.Unmarshal(resp.Data, &created); err != nil {
		t.Fatalf("decode booking failed: %v", err)
	}

	w, resp := f.webhook(t, map[string]interface{}{
		"type":       " PAYMENT.PAID ",
		"booking_no": "  " + created.Booking.BookingNo + " ",
		"amount":     created.Booking.Amount.String(),
		"reference":  " pi_no ",
	}, testWebhookSecret)
	if w.Code != http.StatusOK || resp.StatusCode != 0 {
		t.Fatalf("webhook by booking number failed: %d %+v", w.Code, resp)
	}
	var accepted struct {
		BookingID     uint   `json:"booking_id"`
		PaymentStatus string `json:"payment_status"`
	}
	if err := json.Unmarshal(resp.Data, &accepted); err != nil {
		t.Fatalf("decode webhook data failed: %v", err)
	}
	if accepted.BookingID != created.Booking.ID || accepted.PaymentStatus != constants.PaymentStatusPaid {
		t.Fatalf("unexpected webhook result: %+v", accepted)
	}
}
