package reconcile

import (
	"errors"
	"net/http"
	"time"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/logger"
	"github.com/dedicart/gateway/src/utils/model"

	"github.com/gin-gonic/gin"
	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

// Read only endpoints used by the storefront to poll payment progress.
// Responses are briefly cached, the storefront polls aggressively right
// after a checkout redirect.
type ConsultHandler struct {
	log   *logrus.Entry
	store IntentionStore
	cache *cache.Cache
}

type intentionView struct {
	IntentionId string     `json:"intention_id"`
	TemplateId  string     `json:"template_id"`
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	ExpiresIn   *time.Time `json:"expires_in,omitempty"`
}

func NewConsultHandler(config *config.Config) (self *ConsultHandler) {
	self = new(ConsultHandler)
	self.log = logger.NewSublogger("consult")
	self.cache = cache.New(config.Reconciler.ConsultCacheTTL, 5*time.Minute)
	return
}

func (self *ConsultHandler) WithStore(store IntentionStore) *ConsultHandler {
	self.store = store
	return self
}

func (self *ConsultHandler) OnGetPaymentStatus(c *gin.Context) {
	paymentId := c.Query("payment_id")
	if paymentId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_id is required"})
		return
	}

	if cached, ok := self.cache.Get("payment:" + paymentId); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	intention, err := self.store.GetIntentionByPaymentId(c.Request.Context(), paymentId)
	if err != nil {
		self.respondLookupError(c, err)
		return
	}

	view := newIntentionView(intention)
	self.cache.SetDefault("payment:"+paymentId, view)
	c.JSON(http.StatusOK, view)
}

func (self *ConsultHandler) OnGetIntention(c *gin.Context) {
	intentionId := c.Param("intention_id")

	if cached, ok := self.cache.Get("intention:" + intentionId); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	intention, err := self.store.GetIntention(c.Request.Context(), intentionId)
	if err != nil {
		self.respondLookupError(c, err)
		return
	}

	view := newIntentionView(intention)
	self.cache.SetDefault("intention:"+intentionId, view)
	c.JSON(http.StatusOK, view)
}

func (self *ConsultHandler) respondLookupError(c *gin.Context, err error) {
	if errors.Is(err, ErrIntentionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "intention not found"})
		return
	}
	self.log.WithError(err).Error("Failed to look up intention")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
}

func newIntentionView(intention *model.Intention) (out *intentionView) {
	out = &intentionView{
		IntentionId: intention.IntentionId,
		TemplateId:  intention.TemplateId,
		Plan:        intention.Plan,
		Status:      intention.Status,
	}
	if intention.ExpiresIn.Valid {
		expiresIn := intention.ExpiresIn.Time
		out.ExpiresIn = &expiresIn
	}
	return
}
