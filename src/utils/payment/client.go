package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/dedicart/gateway/src/utils/build_info"
	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/logger"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Payment lookup failed on the provider side.
// Retryable through the provider's own webhook redelivery, never internally.
var ErrUpstream = errors.New("payment provider request failed")

// Client fetches authoritative payment state from the provider's REST API
type Client struct {
	client  *resty.Client
	config  *config.Payment
	log     *logrus.Entry
	limiter *rate.Limiter
}

func NewClient(config *config.Payment) (self *Client) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("payment-client")

	self.limiter = rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimitBurst)

	self.client = resty.New().
		SetBaseURL(config.Url).
		SetTimeout(config.RequestTimeout).
		SetHeader("User-Agent", "dedicart/gateway/"+build_info.Version).
		SetAuthToken(config.AccessToken).
		SetRetryCount(config.RetryCount).
		AddRetryCondition(self.onRetryCondition).
		OnBeforeRequest(self.onRateLimit)

	return
}

func (self *Client) onRateLimit(c *resty.Client, req *resty.Request) error {
	return self.limiter.Wait(req.Context())
}

// Server side errors may be retried, client side ones may not
func (self *Client) onRetryCondition(resp *resty.Response, err error) bool {
	if err != nil {
		return false
	}
	return resp.StatusCode() >= 500
}

// Returns the authoritative payment status and external reference for the given payment id
func (self *Client) GetPayment(ctx context.Context, paymentId string) (out *Payment, err error) {
	resp, err := self.client.R().
		SetContext(ctx).
		SetResult(Payment{}).
		ForceContentType("application/json").
		SetPathParam("id", paymentId).
		Get("/v1/payments/{id}")
	if err != nil {
		self.log.WithError(err).WithField("payment_id", paymentId).Error("Failed to fetch payment")
		return nil, fmt.Errorf("%w: %s", ErrUpstream, err)
	}

	if !resp.IsSuccess() {
		self.log.WithField("payment_id", paymentId).
			WithField("status", resp.StatusCode()).
			WithField("resp", string(resp.Body())).
			Error("Payment lookup has not been successful")
		return nil, fmt.Errorf("%w: unexpected status %s", ErrUpstream, resp.Status())
	}

	out, ok := resp.Result().(*Payment)
	if !ok || out.Id == "" && out.Status == "" {
		self.log.WithField("payment_id", paymentId).Error("Failed to parse payment response")
		return nil, fmt.Errorf("%w: malformed payload", ErrUpstream)
	}
	return
}

// Interface used by the webhook dispatcher, satisfied by Client
type Lookup interface {
	GetPayment(ctx context.Context, paymentId string) (*Payment, error)
}

var _ Lookup = (*Client)(nil)

