package reconcile

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/logger"
	"github.com/dedicart/gateway/src/utils/monitoring"
	"github.com/dedicart/gateway/src/utils/payment"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Receives payment notifications, verifies them and hands them to the
// reconciler. Response codes drive the provider's redelivery: anything
// but a 2xx gets the notification redelivered later.
type WebhookHandler struct {
	log *logrus.Entry

	webhookSecret string

	lookup     payment.Lookup
	reconciler *Reconciler
	monitor    monitoring.Monitor
}

func NewWebhookHandler(config *config.Config) (self *WebhookHandler) {
	self = new(WebhookHandler)
	self.log = logger.NewSublogger("webhook")
	self.webhookSecret = config.Payment.WebhookSecret
	return
}

func (self *WebhookHandler) WithLookup(lookup payment.Lookup) *WebhookHandler {
	self.lookup = lookup
	return self
}

func (self *WebhookHandler) WithReconciler(reconciler *Reconciler) *WebhookHandler {
	self.reconciler = reconciler
	return self
}

func (self *WebhookHandler) WithMonitor(monitor monitoring.Monitor) *WebhookHandler {
	self.monitor = monitor
	return self
}

func (self *WebhookHandler) OnWebhook(c *gin.Context) {
	self.monitor.GetReport().Reconciler.State.WebhooksReceived.Inc()

	body, err := c.GetRawData()
	if err != nil {
		self.monitor.GetReport().Reconciler.Errors.MalformedNotification.Inc()
		c.Status(http.StatusBadRequest)
		return
	}

	var notification payment.Notification
	err = json.Unmarshal(body, &notification)
	if err != nil {
		self.monitor.GetReport().Reconciler.Errors.MalformedNotification.Inc()
		self.log.WithError(err).Error("Failed to parse notification body")
		c.Status(http.StatusBadRequest)
		return
	}

	// Providers send many notification kinds to the same URL, only
	// payment ones matter here. Acknowledged so they aren't redelivered.
	if notification.Type != "payment" {
		self.monitor.GetReport().Reconciler.State.WebhooksIgnored.Inc()
		c.Status(http.StatusOK)
		return
	}

	if notification.Data.Id == "" {
		self.monitor.GetReport().Reconciler.Errors.MalformedNotification.Inc()
		self.log.Error("Payment notification without a payment id")
		c.Status(http.StatusBadRequest)
		return
	}

	if !payment.VerifySignature(c.Request.Header, body, self.webhookSecret) {
		self.monitor.GetReport().Reconciler.Errors.SignatureRejected.Inc()
		c.Status(http.StatusUnauthorized)
		return
	}

	// The notification body is only a hint, the authoritative status
	// comes from the provider's API
	pmt, err := self.lookup.GetPayment(c.Request.Context(), notification.Data.Id)
	if err != nil {
		self.monitor.GetReport().Reconciler.Errors.PaymentLookupFailure.Inc()
		self.log.WithError(err).WithField("payment_id", notification.Data.Id).Error("Payment lookup failed")
		c.Status(http.StatusBadGateway)
		return
	}

	op := ParseOperation(c.Query("operation"))

	out, err := self.reconciler.Process(c.Request.Context(), op, pmt)
	if err != nil {
		c.Status(self.errorStatus(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"intention_id": out.Intention.IntentionId,
		"approved":     out.Approved,
	})
}

func (self *WebhookHandler) errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingReference):
		self.monitor.GetReport().Reconciler.Errors.MalformedNotification.Inc()
		return http.StatusBadRequest

	case errors.Is(err, ErrIntentionNotFound):
		// Counted by the reconciler
		return http.StatusNotFound

	case errors.Is(err, ErrMissingExpiry):
		// Terminal, a redelivery can't fix a renewal for an intention
		// that was never approved
		self.monitor.GetReport().Reconciler.Errors.MalformedNotification.Inc()
		return http.StatusBadRequest

	case errors.Is(err, ErrFormDataMissing), errors.Is(err, ErrInvalidTemplate):
		self.monitor.GetReport().Reconciler.Errors.FormDataMissing.Inc()
		self.log.WithError(err).Error("Form submission unavailable")
		return http.StatusInternalServerError

	default:
		self.monitor.GetReport().Reconciler.Errors.DbFailure.Inc()
		self.log.WithError(err).Error("Failed to reconcile payment")
		return http.StatusInternalServerError
	}
}
