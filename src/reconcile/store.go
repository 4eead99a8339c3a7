package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/logger"
	"github.com/dedicart/gateway/src/utils/model"

	"github.com/jackc/pgtype"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrIntentionNotFound = errors.New("intention not found")
	ErrFormDataMissing   = errors.New("form submission not found")
	ErrInvalidTemplate   = errors.New("invalid template id")
)

// Database access used by the reconciler and the migrator.
// Implemented by Store, faked in tests.
type IntentionStore interface {
	GetIntention(ctx context.Context, intentionId string) (*model.Intention, error)
	GetIntentionByPaymentId(ctx context.Context, paymentId string) (*model.Intention, error)
	RecordPaymentId(ctx context.Context, intention *model.Intention, paymentId string) (added bool, err error)
	Approve(ctx context.Context, intention *model.Intention, expiresIn time.Time) error
	SetExpiry(ctx context.Context, intention *model.Intention, expiresIn time.Time) error
	GetFormSubmission(ctx context.Context, templateId, intentionId string) (*model.FormSubmission, error)
	SaveFormData(ctx context.Context, templateId, intentionId string, formData []byte) error
}

type Store struct {
	db               *gorm.DB
	log              *logrus.Entry
	allowedTemplates []string
}

func NewStore(config *config.Config, db *gorm.DB) (self *Store) {
	self = new(Store)
	self.db = db
	self.log = logger.NewSublogger("store")
	self.allowedTemplates = config.Reconciler.AllowedTemplates
	return
}

func (self *Store) GetIntention(ctx context.Context, intentionId string) (out *model.Intention, err error) {
	out = new(model.Intention)
	err = self.db.WithContext(ctx).
		Where("intention_id = ?", intentionId).
		First(out).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentionNotFound
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *Store) GetIntentionByPaymentId(ctx context.Context, paymentId string) (out *model.Intention, err error) {
	out = new(model.Intention)
	err = self.db.WithContext(ctx).
		Where("? = ANY(payment_ids)", paymentId).
		First(out).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrIntentionNotFound
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *Store) CreateIntention(ctx context.Context, intention *model.Intention) (err error) {
	if intention.IntentionId == "" {
		intention.IntentionId = model.NewIntentionId()
	}
	if intention.Status == "" {
		intention.Status = model.IntentionStatusPending
	}
	return self.db.WithContext(ctx).Create(intention).Error
}

// Appends the payment id unless it's already recorded. A duplicate only
// touches updated_at, the array stays unchanged.
func (self *Store) RecordPaymentId(ctx context.Context, intention *model.Intention, paymentId string) (added bool, err error) {
	for _, id := range intention.PaymentIds {
		if id == paymentId {
			err = self.db.WithContext(ctx).
				Model(intention).
				Update("updated_at", time.Now()).
				Error
			return false, err
		}
	}

	intention.PaymentIds = append(intention.PaymentIds, paymentId)
	err = self.db.WithContext(ctx).
		Model(intention).
		Update("payment_ids", intention.PaymentIds).
		Error
	if err != nil {
		return false, err
	}
	return true, nil
}

func (self *Store) Approve(ctx context.Context, intention *model.Intention, expiresIn time.Time) (err error) {
	err = self.db.WithContext(ctx).
		Model(intention).
		Updates(map[string]interface{}{
			"status":     model.IntentionStatusApproved,
			"expires_in": expiresIn,
		}).
		Error
	if err != nil {
		return
	}
	intention.Status = model.IntentionStatusApproved
	intention.ExpiresIn.Time = expiresIn
	intention.ExpiresIn.Valid = true
	return
}

func (self *Store) SetExpiry(ctx context.Context, intention *model.Intention, expiresIn time.Time) (err error) {
	err = self.db.WithContext(ctx).
		Model(intention).
		Update("expires_in", expiresIn).
		Error
	if err != nil {
		return
	}
	intention.ExpiresIn.Time = expiresIn
	intention.ExpiresIn.Valid = true
	return
}

func (self *Store) GetFormSubmission(ctx context.Context, templateId, intentionId string) (out *model.FormSubmission, err error) {
	err = self.validateTemplate(templateId)
	if err != nil {
		return
	}

	out = new(model.FormSubmission)
	err = self.db.WithContext(ctx).
		Table(templateId).
		Where("intention_id = ?", intentionId).
		Take(out).
		Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrFormDataMissing
	}
	if err != nil {
		return nil, err
	}
	return
}

func (self *Store) SaveFormData(ctx context.Context, templateId, intentionId string, formData []byte) (err error) {
	err = self.validateTemplate(templateId)
	if err != nil {
		return
	}

	var data pgtype.JSONB
	err = data.Set(formData)
	if err != nil {
		return
	}

	return self.db.WithContext(ctx).
		Table(templateId).
		Where("intention_id = ?", intentionId).
		Updates(map[string]interface{}{
			"form_data":  data,
			"status":     model.IntentionStatusApproved,
			"updated_at": time.Now(),
		}).
		Error
}

// Template ids become table names, whitelist first
func (self *Store) validateTemplate(templateId string) error {
	if !model.IsValidTemplateId(templateId) {
		self.log.WithField("template_id", templateId).Error("Template id failed pattern check")
		return ErrInvalidTemplate
	}
	if len(self.allowedTemplates) == 0 {
		return nil
	}
	for _, allowed := range self.allowedTemplates {
		if allowed == templateId {
			return nil
		}
	}
	self.log.WithField("template_id", templateId).Error("Template id not on the allowed list")
	return ErrInvalidTemplate
}

var _ IntentionStore = (*Store)(nil)
