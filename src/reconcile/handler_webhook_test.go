package reconcile

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/model"
	monitor_reconciler "github.com/dedicart/gateway/src/utils/monitoring/reconciler"
	"github.com/dedicart/gateway/src/utils/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type WebhookHandlerTestSuite struct {
	suite.Suite

	config   *config.Config
	store    *fakeStore
	migrator *fakeMigrator
	lookup   *fakeLookup
	monitor  *monitor_reconciler.Monitor
	router   *gin.Engine
}

func (s *WebhookHandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	s.config = config.Default()
	s.config.Payment.WebhookSecret = "whsec_test"

	s.store = newFakeStore()
	s.migrator = newFakeMigrator()
	s.lookup = &fakeLookup{}
	s.monitor = monitor_reconciler.NewMonitor()

	reconciler := NewReconciler(s.config).
		WithStore(s.store).
		WithMigrator(s.migrator).
		WithMonitor(s.monitor)

	handler := NewWebhookHandler(s.config).
		WithLookup(s.lookup).
		WithReconciler(reconciler).
		WithMonitor(s.monitor)

	s.router = gin.New()
	s.router.POST("/webhook", handler.OnWebhook)
}

func (s *WebhookHandlerTestSuite) addIntention() *model.Intention {
	intention := &model.Intention{
		IntentionId: "in_test",
		TemplateId:  "wedding",
		Status:      model.IntentionStatusPending,
	}
	s.store.addIntention(intention)
	return intention
}

func (s *WebhookHandlerTestSuite) notification(paymentId string) []byte {
	return []byte(fmt.Sprintf(`{"type":"payment","data":{"id":"%s"}}`, paymentId))
}

func (s *WebhookHandlerTestSuite) post(path string, body []byte, signed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	if signed {
		var notification payment.Notification
		s.Require().NoError(json.Unmarshal(body, &notification))

		ts := "1700000000"
		requestId := "req-1"
		mac := hmac.New(sha256.New, []byte(s.config.Payment.WebhookSecret))
		fmt.Fprintf(mac, "id:%s;request-id:%s;ts:%s;", notification.Data.Id, requestId, ts)

		req.Header.Set(payment.SignatureHeader, fmt.Sprintf("ts=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
		req.Header.Set(payment.RequestIdHeader, requestId)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *WebhookHandlerTestSuite) TestApprovedPayment() {
	intention := s.addIntention()
	s.lookup.payment = &payment.Payment{Id: "p-1", Status: payment.StatusApproved, ExternalReference: "in_test"}

	w := s.post("/webhook", s.notification("p-1"), true)
	s.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("in_test", resp["intention_id"])
	s.Equal(true, resp["approved"])

	s.Equal(model.IntentionStatusApproved, intention.Status)
	s.Equal([]string{"in_test"}, s.migrator.calls)
}

func (s *WebhookHandlerTestSuite) TestRenewalOperation() {
	intention := s.addIntention()
	intention.Status = model.IntentionStatusApproved
	s.Require().NoError(intention.ExpiresIn.Scan(nil))
	s.lookup.payment = &payment.Payment{Id: "p-2", Status: payment.StatusApproved, ExternalReference: "in_test"}

	// Renewal of a never approved intention is terminal
	w := s.post("/webhook?operation=renewal", s.notification("p-2"), true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *WebhookHandlerTestSuite) TestPendingPayment() {
	intention := s.addIntention()
	s.lookup.payment = &payment.Payment{Id: "p-1", Status: "pending", ExternalReference: "in_test"}

	w := s.post("/webhook", s.notification("p-1"), true)
	s.Equal(http.StatusOK, w.Code)

	var resp map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(false, resp["approved"])
	s.Equal(model.IntentionStatusPending, intention.Status)
}

func (s *WebhookHandlerTestSuite) TestMalformedBody() {
	w := s.post("/webhook", []byte("not json"), false)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(uint64(1), s.monitor.Report.Reconciler.Errors.MalformedNotification.Load())
}

func (s *WebhookHandlerTestSuite) TestNonPaymentTypeAcknowledged() {
	// Not signed, other notification kinds are acknowledged before any
	// verification happens
	w := s.post("/webhook", []byte(`{"type":"subscription","data":{"id":"sub-1"}}`), false)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(uint64(1), s.monitor.Report.Reconciler.State.WebhooksIgnored.Load())
	s.Equal(0, s.lookup.calls)
}

func (s *WebhookHandlerTestSuite) TestMissingPaymentId() {
	w := s.post("/webhook", []byte(`{"type":"payment","data":{}}`), false)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *WebhookHandlerTestSuite) TestBadSignature() {
	s.addIntention()

	w := s.post("/webhook", s.notification("p-1"), false)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal(uint64(1), s.monitor.Report.Reconciler.Errors.SignatureRejected.Load())

	// Nothing touched the database or the provider
	s.Equal(0, s.store.getCalls)
	s.Equal(0, s.lookup.calls)
}

func (s *WebhookHandlerTestSuite) TestPaymentLookupFailure() {
	s.addIntention()
	s.lookup.err = payment.ErrUpstream

	w := s.post("/webhook", s.notification("p-1"), true)
	s.Equal(http.StatusBadGateway, w.Code)
	s.Equal(uint64(1), s.monitor.Report.Reconciler.Errors.PaymentLookupFailure.Load())
}

func (s *WebhookHandlerTestSuite) TestMissingExternalReference() {
	s.lookup.payment = &payment.Payment{Id: "p-1", Status: payment.StatusApproved}

	w := s.post("/webhook", s.notification("p-1"), true)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *WebhookHandlerTestSuite) TestUnknownIntention() {
	s.lookup.payment = &payment.Payment{Id: "p-1", Status: payment.StatusApproved, ExternalReference: "in_missing"}

	w := s.post("/webhook", s.notification("p-1"), true)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *WebhookHandlerTestSuite) TestMissingFormSubmission() {
	s.addIntention()
	s.migrator.err = ErrFormDataMissing
	s.lookup.payment = &payment.Payment{Id: "p-1", Status: payment.StatusApproved, ExternalReference: "in_test"}

	w := s.post("/webhook", s.notification("p-1"), true)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.Equal(uint64(1), s.monitor.Report.Reconciler.Errors.FormDataMissing.Load())
}

func TestWebhookHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}
