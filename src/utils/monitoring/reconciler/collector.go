package monitor_reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Collector struct {
	monitor *Monitor

	// Run
	UpForSeconds *prometheus.Desc

	// Errors
	SignatureRejected     *prometheus.Desc
	MalformedNotification *prometheus.Desc
	PaymentLookupFailure  *prometheus.Desc
	IntentionNotFound     *prometheus.Desc
	DbFailure             *prometheus.Desc
	FormDataMissing       *prometheus.Desc
	AssetMoveErrors       *prometheus.Desc

	// State
	WebhooksReceived  *prometheus.Desc
	WebhooksIgnored   *prometheus.Desc
	PaymentsPending   *prometheus.Desc
	PaymentsApproved  *prometheus.Desc
	PlanRenewals      *prometheus.Desc
	DuplicatePayments *prometheus.Desc
	AssetsMoved       *prometheus.Desc
	AssetsSkipped     *prometheus.Desc
	AssetsNotFound    *prometheus.Desc
}

func NewCollector() *Collector {
	return &Collector{
		UpForSeconds: prometheus.NewDesc("up_for_seconds", "", nil, nil),

		// Errors
		SignatureRejected:     prometheus.NewDesc("signature_rejected", "", nil, nil),
		MalformedNotification: prometheus.NewDesc("malformed_notification", "", nil, nil),
		PaymentLookupFailure:  prometheus.NewDesc("payment_lookup_failure", "", nil, nil),
		IntentionNotFound:     prometheus.NewDesc("intention_not_found", "", nil, nil),
		DbFailure:             prometheus.NewDesc("db_failure", "", nil, nil),
		FormDataMissing:       prometheus.NewDesc("form_data_missing", "", nil, nil),
		AssetMoveErrors:       prometheus.NewDesc("asset_move_errors", "", nil, nil),

		// State
		WebhooksReceived:  prometheus.NewDesc("webhooks_received", "", nil, nil),
		WebhooksIgnored:   prometheus.NewDesc("webhooks_ignored", "", nil, nil),
		PaymentsPending:   prometheus.NewDesc("payments_pending", "", nil, nil),
		PaymentsApproved:  prometheus.NewDesc("payments_approved", "", nil, nil),
		PlanRenewals:      prometheus.NewDesc("plan_renewals", "", nil, nil),
		DuplicatePayments: prometheus.NewDesc("duplicate_payments", "", nil, nil),
		AssetsMoved:       prometheus.NewDesc("assets_moved", "", nil, nil),
		AssetsSkipped:     prometheus.NewDesc("assets_skipped", "", nil, nil),
		AssetsNotFound:    prometheus.NewDesc("assets_not_found", "", nil, nil),
	}
}

func (self *Collector) WithMonitor(m *Monitor) *Collector {
	self.monitor = m
	return self
}

func (self *Collector) Describe(ch chan<- *prometheus.Desc) {
	// Run
	ch <- self.UpForSeconds

	// Errors
	ch <- self.SignatureRejected
	ch <- self.MalformedNotification
	ch <- self.PaymentLookupFailure
	ch <- self.IntentionNotFound
	ch <- self.DbFailure
	ch <- self.FormDataMissing
	ch <- self.AssetMoveErrors

	// State
	ch <- self.WebhooksReceived
	ch <- self.WebhooksIgnored
	ch <- self.PaymentsPending
	ch <- self.PaymentsApproved
	ch <- self.PlanRenewals
	ch <- self.DuplicatePayments
	ch <- self.AssetsMoved
	ch <- self.AssetsSkipped
	ch <- self.AssetsNotFound
}

// Collect implements required collect function for all prometheus collectors
func (self *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(self.UpForSeconds, prometheus.GaugeValue, float64(self.monitor.Report.Run.State.UpForSeconds.Load()))

	// Errors
	ch <- prometheus.MustNewConstMetric(self.SignatureRejected, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.SignatureRejected.Load()))
	ch <- prometheus.MustNewConstMetric(self.MalformedNotification, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.MalformedNotification.Load()))
	ch <- prometheus.MustNewConstMetric(self.PaymentLookupFailure, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.PaymentLookupFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.IntentionNotFound, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.IntentionNotFound.Load()))
	ch <- prometheus.MustNewConstMetric(self.DbFailure, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.DbFailure.Load()))
	ch <- prometheus.MustNewConstMetric(self.FormDataMissing, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.FormDataMissing.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetMoveErrors, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.Errors.AssetMoveErrors.Load()))

	// State
	ch <- prometheus.MustNewConstMetric(self.WebhooksReceived, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.WebhooksReceived.Load()))
	ch <- prometheus.MustNewConstMetric(self.WebhooksIgnored, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.WebhooksIgnored.Load()))
	ch <- prometheus.MustNewConstMetric(self.PaymentsPending, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.PaymentsPending.Load()))
	ch <- prometheus.MustNewConstMetric(self.PaymentsApproved, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.PaymentsApproved.Load()))
	ch <- prometheus.MustNewConstMetric(self.PlanRenewals, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.PlanRenewals.Load()))
	ch <- prometheus.MustNewConstMetric(self.DuplicatePayments, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.DuplicatePayments.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsMoved, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.AssetsMoved.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsSkipped, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.AssetsSkipped.Load()))
	ch <- prometheus.MustNewConstMetric(self.AssetsNotFound, prometheus.CounterValue, float64(self.monitor.Report.Reconciler.State.AssetsNotFound.Load()))
}
