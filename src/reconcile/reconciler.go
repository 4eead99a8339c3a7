package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/logger"
	"github.com/dedicart/gateway/src/utils/model"
	"github.com/dedicart/gateway/src/utils/monitoring"
	"github.com/dedicart/gateway/src/utils/payment"

	"github.com/sirupsen/logrus"
)

var (
	ErrMissingReference = errors.New("payment has no external reference")
	ErrMissingExpiry    = errors.New("intention has no expiry to renew")
)

// Runs the asset migration for an approved intention.
// Implemented by Migrator, faked in tests.
type AssetMigrator interface {
	Migrate(ctx context.Context, intention *model.Intention) (*MigrationReport, error)
}

// Applies a verified payment to its intention. Every step is safe to
// repeat, the provider redelivers notifications until it sees a 2xx.
type Reconciler struct {
	log *logrus.Entry

	store    IntentionStore
	migrator AssetMigrator
	monitor  monitoring.Monitor

	planDuration time.Duration

	// Optional, nil when event publishing is disabled
	events chan *ApprovalEvent
}

func NewReconciler(config *config.Config) (self *Reconciler) {
	self = new(Reconciler)
	self.log = logger.NewSublogger("reconciler")
	self.planDuration = config.Reconciler.PlanDuration
	return
}

func (self *Reconciler) WithStore(store IntentionStore) *Reconciler {
	self.store = store
	return self
}

func (self *Reconciler) WithMigrator(migrator AssetMigrator) *Reconciler {
	self.migrator = migrator
	return self
}

func (self *Reconciler) WithMonitor(monitor monitoring.Monitor) *Reconciler {
	self.monitor = monitor
	return self
}

func (self *Reconciler) WithEventsChannel(events chan *ApprovalEvent) *Reconciler {
	self.events = events
	return self
}

func (self *Reconciler) Process(ctx context.Context, op Operation, pmt *payment.Payment) (out *Outcome, err error) {
	if pmt.ExternalReference == "" {
		return nil, ErrMissingReference
	}

	intention, err := self.store.GetIntention(ctx, pmt.ExternalReference)
	if err != nil {
		if errors.Is(err, ErrIntentionNotFound) {
			self.monitor.GetReport().Reconciler.Errors.IntentionNotFound.Inc()
		}
		return
	}

	// The payment id is recorded before any status check, a pending
	// payment that never gets approved still leaves a trace
	added, err := self.store.RecordPaymentId(ctx, intention, pmt.Id)
	if err != nil {
		return
	}
	if !added {
		self.monitor.GetReport().Reconciler.State.DuplicatePayments.Inc()
		self.log.WithField("payment_id", pmt.Id).
			WithField("intention_id", intention.IntentionId).
			Debug("Payment id already recorded, redelivery")
	}

	out = &Outcome{Intention: intention}

	if pmt.Status != payment.StatusApproved {
		self.monitor.GetReport().Reconciler.State.PaymentsPending.Inc()
		self.log.WithField("payment_id", pmt.Id).
			WithField("status", pmt.Status).
			Info("Payment not approved yet, nothing to apply")
		return
	}

	switch op {
	case OperationRenewal:
		err = self.renew(ctx, intention)
		if err != nil {
			return
		}
		out.Approved = true
		out.Renewed = true
		self.monitor.GetReport().Reconciler.State.PlanRenewals.Inc()

	default:
		out.Migration, err = self.approve(ctx, intention)
		if err != nil {
			return
		}
		out.Approved = true
		self.monitor.GetReport().Reconciler.State.PaymentsApproved.Inc()
	}

	self.emit(op, intention, pmt.Id)
	return
}

// Extends access by one plan period. A plan renewed before it lapsed
// keeps its remaining time, a lapsed one restarts from now.
func (self *Reconciler) renew(ctx context.Context, intention *model.Intention) (err error) {
	if !intention.ExpiresIn.Valid {
		return ErrMissingExpiry
	}

	base := intention.ExpiresIn.Time
	if now := time.Now(); base.Before(now) {
		base = now
	}

	return self.store.SetExpiry(ctx, intention, base.Add(self.planDuration))
}

// First approval: mark the intention approved with a fresh expiry, then
// move its assets into place. A redelivered approval runs the same path,
// the migration is a no-op once the assets are permanent.
func (self *Reconciler) approve(ctx context.Context, intention *model.Intention) (report *MigrationReport, err error) {
	err = self.store.Approve(ctx, intention, time.Now().Add(self.planDuration))
	if err != nil {
		return
	}

	report, err = self.migrator.Migrate(ctx, intention)
	if err != nil {
		return
	}

	self.log.WithField("intention_id", intention.IntentionId).
		WithField("moved", report.Moved).
		WithField("skipped", report.Skipped).
		WithField("not_found", report.NotFound).
		WithField("errors", report.Errors).
		Info("Asset migration finished")
	return
}

func (self *Reconciler) emit(op Operation, intention *model.Intention, paymentId string) {
	if self.events == nil {
		return
	}

	event := &ApprovalEvent{
		IntentionId: intention.IntentionId,
		TemplateId:  intention.TemplateId,
		PaymentId:   paymentId,
		Operation:   op,
		ExpiresIn:   intention.ExpiresIn.Time,
	}

	select {
	case self.events <- event:
	default:
		self.log.WithField("intention_id", intention.IntentionId).
			Warn("Approval event channel full, dropping event")
	}
}
