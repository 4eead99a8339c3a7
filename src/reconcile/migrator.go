package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/model"
	"github.com/dedicart/gateway/src/utils/monitoring"
	"github.com/dedicart/gateway/src/utils/storage"
	"github.com/dedicart/gateway/src/utils/task"
)

const (
	provisionalPrefix = "temp/"
	permanentPrefix   = "final/"
	publicPathPrefix  = "/file/"
)

// Object storage operations the migrator needs.
// Implemented by storage.Client, faked in tests.
type ObjectStore interface {
	Get(ctx context.Context, key string) (data []byte, contentType string, err error)
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
}

// Moves an approved intention's uploaded assets out of the provisional
// area into a permanent, intention scoped location and rewrites the
// preview links stored in the form data to match
type Migrator struct {
	*task.Task

	store   IntentionStore
	objects ObjectStore
	monitor monitoring.Monitor

	publicUrl string
}

func NewMigrator(config *config.Config) (self *Migrator) {
	self = new(Migrator)

	self.publicUrl = strings.TrimSuffix(config.Storage.PublicUrl, "/")

	self.Task = task.NewTask(config, "migrator").
		WithWorkerPool(config.Reconciler.MigratorNumWorkers, config.Reconciler.MigratorWorkerQueueSize).
		WithSubtaskFunc(self.run)

	return
}

// Keeps the worker pool alive until the task is stopped, migrations are
// submitted synchronously through Migrate
func (self *Migrator) run() (err error) {
	<-self.StopChannel
	return nil
}

func (self *Migrator) WithStore(store IntentionStore) *Migrator {
	self.store = store
	return self
}

func (self *Migrator) WithObjectStore(objects ObjectStore) *Migrator {
	self.objects = objects
	return self
}

func (self *Migrator) WithMonitor(monitor monitoring.Monitor) *Migrator {
	self.monitor = monitor
	return self
}

// Migrates every photo referenced by the intention's form submission.
// Photos are processed concurrently, one asset failing doesn't stop the
// others. The side table row is marked approved even when there's
// nothing to move.
func (self *Migrator) Migrate(ctx context.Context, intention *model.Intention) (report *MigrationReport, err error) {
	submission, err := self.store.GetFormSubmission(ctx, intention.TemplateId, intention.IntentionId)
	if err != nil {
		return
	}

	var formData map[string]interface{}
	err = json.Unmarshal(submission.FormData.Bytes, &formData)
	if err != nil {
		return nil, errors.Join(ErrFormDataMissing, err)
	}

	report = new(MigrationReport)

	photos, _ := formData["photos"].([]interface{})
	report.Total = len(photos)

	var mtx sync.Mutex
	var wg sync.WaitGroup
	for _, p := range photos {
		photo, ok := p.(map[string]interface{})
		if !ok {
			report.Skipped++
			continue
		}
		preview, ok := photo["preview"].(string)
		if !ok {
			report.Skipped++
			continue
		}

		wg.Add(1)
		self.SubmitToWorker(func() {
			defer wg.Done()
			outcome, newPreview := self.migrateAsset(ctx, intention, preview)

			mtx.Lock()
			defer mtx.Unlock()
			switch outcome {
			case assetMoved:
				photo["preview"] = newPreview
				report.Moved++
			case assetSkipped:
				report.Skipped++
			case assetNotFound:
				report.NotFound++
			case assetError:
				report.Errors++
			}
		})
	}
	wg.Wait()

	if self.monitor != nil {
		self.monitor.GetReport().Reconciler.State.AssetsMoved.Add(uint64(report.Moved))
		self.monitor.GetReport().Reconciler.State.AssetsSkipped.Add(uint64(report.Skipped))
		self.monitor.GetReport().Reconciler.State.AssetsNotFound.Add(uint64(report.NotFound))
		self.monitor.GetReport().Reconciler.Errors.AssetMoveErrors.Add(uint64(report.Errors))
	}

	// Approval is recorded even when every photo was skipped or missing,
	// the payment is authoritative
	updated, err := json.Marshal(formData)
	if err != nil {
		return report, err
	}
	err = self.store.SaveFormData(ctx, intention.TemplateId, intention.IntentionId, updated)
	if err != nil {
		return report, err
	}

	return report, nil
}

type assetOutcome int

const (
	assetMoved assetOutcome = iota
	assetSkipped
	assetNotFound
	assetError
)

func (self *Migrator) migrateAsset(ctx context.Context, intention *model.Intention, preview string) (outcome assetOutcome, newPreview string) {
	tempKey, ok := self.parseProvisionalKey(preview)
	if !ok {
		// Already permanent or externally hosted, leave it alone
		return assetSkipped, ""
	}

	finalKey, ok := self.permanentKey(tempKey, intention.IntentionId)
	if !ok {
		self.Log.WithField("key", tempKey).Warn("Provisional key doesn't match the expected layout")
		return assetSkipped, ""
	}

	data, contentType, err := self.objects.Get(ctx, tempKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			self.Log.WithField("key", tempKey).Warn("Provisional asset already gone")
			return assetNotFound, ""
		}
		self.Log.WithError(err).WithField("key", tempKey).Error("Failed to fetch provisional asset")
		return assetError, ""
	}

	err = self.objects.Put(ctx, finalKey, data, contentType)
	if err != nil {
		self.Log.WithError(err).WithField("key", finalKey).Error("Failed to store permanent asset")
		return assetError, ""
	}

	// The asset is safely in the permanent location at this point, a
	// failed cleanup leaves a stray provisional copy at worst
	err = self.objects.Remove(ctx, tempKey)
	if err != nil {
		self.Log.WithError(err).WithField("key", tempKey).Warn("Failed to remove provisional asset")
	}

	return assetMoved, self.publicUrl + publicPathPrefix + finalKey
}

// Extracts the object key from a preview URL. Only keys under the
// provisional prefix qualify for migration.
func (self *Migrator) parseProvisionalKey(preview string) (key string, ok bool) {
	u, err := url.Parse(preview)
	if err != nil {
		return "", false
	}
	key = strings.TrimPrefix(u.Path, publicPathPrefix)
	key = strings.TrimPrefix(key, "/")
	if !strings.HasPrefix(key, provisionalPrefix) {
		return "", false
	}
	return key, true
}

// temp/<template>/<filename> -> final/<template>/<intention_id>/<filename>
func (self *Migrator) permanentKey(tempKey, intentionId string) (finalKey string, ok bool) {
	parts := strings.SplitN(tempKey, "/", 3)
	if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
		return "", false
	}
	return permanentPrefix + parts[1] + "/" + intentionId + "/" + parts[2], true
}
