package reconcile

import (
	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/model"
	monitor_reconciler "github.com/dedicart/gateway/src/utils/monitoring/reconciler"
	"github.com/dedicart/gateway/src/utils/payment"
	"github.com/dedicart/gateway/src/utils/publisher"
	"github.com/dedicart/gateway/src/utils/storage"
	"github.com/dedicart/gateway/src/utils/task"
)

// Main class that orchestrates reconciliation
type Controller struct {
	*task.Task
}

func NewController(config *config.Config) (self *Controller, err error) {
	self = new(Controller)
	self.Task = task.NewTask(config, "controller")

	monitor := monitor_reconciler.NewMonitor()

	db, err := model.NewConnection(self.Ctx, config, "reconciler")
	if err != nil {
		return
	}

	objects, err := storage.NewClient(&config.Storage)
	if err != nil {
		return
	}

	store := NewStore(config, db)

	migrator := NewMigrator(config).
		WithStore(store).
		WithObjectStore(objects).
		WithMonitor(monitor)

	reconciler := NewReconciler(config).
		WithStore(store).
		WithMigrator(migrator).
		WithMonitor(monitor)

	if config.Redis.Enabled {
		events := make(chan *ApprovalEvent, config.Redis.MaxQueueSize)
		reconciler.WithEventsChannel(events)

		redisPublisher := publisher.NewRedisPublisher[*ApprovalEvent](config, "redis-publisher").
			WithInputChannel(events).
			WithMonitor(monitor)

		self.Task = self.Task.
			WithSubtask(redisPublisher.Task).
			WithOnStop(func() {
				// Lets the publisher's loop drain and finish
				close(events)
			})
	}

	webhookHandler := NewWebhookHandler(config).
		WithLookup(payment.NewClient(&config.Payment)).
		WithReconciler(reconciler).
		WithMonitor(monitor)

	consultHandler := NewConsultHandler(config).
		WithStore(store)

	server := NewServer(config).
		WithMonitor(monitor).
		WithWebhookHandler(webhookHandler).
		WithConsultHandler(consultHandler).
		WithRoutes()

	self.Task = self.Task.
		WithSubtask(monitor.Task).
		WithSubtask(migrator.Task).
		WithSubtask(server.Task).
		WithOnAfterStop(func() {
			sqlDB, err := db.DB()
			if err != nil {
				return
			}
			sqlDB.Close()
		})

	return
}
