package config

import (
	"time"

	"github.com/spf13/viper"
)

type Reconciler struct {
	// How long an approved plan lasts before it needs a renewal
	PlanDuration time.Duration

	// Number of workers migrating assets
	MigratorNumWorkers int

	// Size of the migrator's worker queue
	MigratorWorkerQueueSize int

	// How long consult responses are cached
	ConsultCacheTTL time.Duration

	// Templates allowed to address a form data side table.
	// Empty list means any name matching the template pattern is accepted.
	AllowedTemplates []string
}

func setReconcilerDefaults() {
	// 365 days
	viper.SetDefault("Reconciler.PlanDuration", "8760h")
	viper.SetDefault("Reconciler.MigratorNumWorkers", "8")
	viper.SetDefault("Reconciler.MigratorWorkerQueueSize", "64")
	viper.SetDefault("Reconciler.ConsultCacheTTL", "30s")
	viper.SetDefault("Reconciler.AllowedTemplates", "")
}
