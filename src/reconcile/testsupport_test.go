package reconcile

import (
	"context"
	"sync"
	"time"

	"github.com/dedicart/gateway/src/utils/model"
	"github.com/dedicart/gateway/src/utils/payment"
	"github.com/dedicart/gateway/src/utils/storage"
)

// In memory IntentionStore
type fakeStore struct {
	mtx sync.Mutex

	intentions map[string]*model.Intention

	// templateId + "/" + intentionId -> form data
	forms map[string][]byte

	// Last form data written per key
	saved map[string][]byte

	// Forced failure for any call
	failWith error

	getCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		intentions: make(map[string]*model.Intention),
		forms:      make(map[string][]byte),
		saved:      make(map[string][]byte),
	}
}

func (self *fakeStore) addIntention(intention *model.Intention) *fakeStore {
	self.intentions[intention.IntentionId] = intention
	return self
}

func (self *fakeStore) addForm(templateId, intentionId string, formData []byte) *fakeStore {
	self.forms[templateId+"/"+intentionId] = formData
	return self
}

func (self *fakeStore) GetIntention(ctx context.Context, intentionId string) (*model.Intention, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.getCalls++
	if self.failWith != nil {
		return nil, self.failWith
	}
	intention, ok := self.intentions[intentionId]
	if !ok {
		return nil, ErrIntentionNotFound
	}
	return intention, nil
}

func (self *fakeStore) GetIntentionByPaymentId(ctx context.Context, paymentId string) (*model.Intention, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failWith != nil {
		return nil, self.failWith
	}
	for _, intention := range self.intentions {
		for _, id := range intention.PaymentIds {
			if id == paymentId {
				return intention, nil
			}
		}
	}
	return nil, ErrIntentionNotFound
}

func (self *fakeStore) RecordPaymentId(ctx context.Context, intention *model.Intention, paymentId string) (added bool, err error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failWith != nil {
		return false, self.failWith
	}
	for _, id := range intention.PaymentIds {
		if id == paymentId {
			intention.UpdatedAt = time.Now()
			return false, nil
		}
	}
	intention.PaymentIds = append(intention.PaymentIds, paymentId)
	intention.UpdatedAt = time.Now()
	return true, nil
}

func (self *fakeStore) Approve(ctx context.Context, intention *model.Intention, expiresIn time.Time) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failWith != nil {
		return self.failWith
	}
	intention.Status = model.IntentionStatusApproved
	intention.ExpiresIn.Time = expiresIn
	intention.ExpiresIn.Valid = true
	return nil
}

func (self *fakeStore) SetExpiry(ctx context.Context, intention *model.Intention, expiresIn time.Time) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failWith != nil {
		return self.failWith
	}
	intention.ExpiresIn.Time = expiresIn
	intention.ExpiresIn.Valid = true
	return nil
}

func (self *fakeStore) GetFormSubmission(ctx context.Context, templateId, intentionId string) (*model.FormSubmission, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failWith != nil {
		return nil, self.failWith
	}
	formData, ok := self.forms[templateId+"/"+intentionId]
	if !ok {
		return nil, ErrFormDataMissing
	}
	submission := &model.FormSubmission{
		IntentionId: intentionId,
		Status:      model.IntentionStatusPending,
	}
	err := submission.FormData.Set(formData)
	if err != nil {
		return nil, err
	}
	return submission, nil
}

func (self *fakeStore) SaveFormData(ctx context.Context, templateId, intentionId string, formData []byte) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.failWith != nil {
		return self.failWith
	}
	self.saved[templateId+"/"+intentionId] = formData
	return nil
}

var _ IntentionStore = (*fakeStore)(nil)

// Records calls, returns a canned report
type fakeMigrator struct {
	mtx    sync.Mutex
	calls  []string
	report *MigrationReport
	err    error
}

func newFakeMigrator() *fakeMigrator {
	return &fakeMigrator{report: &MigrationReport{}}
}

func (self *fakeMigrator) Migrate(ctx context.Context, intention *model.Intention) (*MigrationReport, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	self.calls = append(self.calls, intention.IntentionId)
	if self.err != nil {
		return nil, self.err
	}
	return self.report, nil
}

var _ AssetMigrator = (*fakeMigrator)(nil)

// In memory ObjectStore
type fakeObjects struct {
	mtx          sync.Mutex
	objects      map[string][]byte
	contentTypes map[string]string
	putErr       error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (self *fakeObjects) add(key string, data []byte, contentType string) *fakeObjects {
	self.objects[key] = data
	self.contentTypes[key] = contentType
	return self
}

func (self *fakeObjects) Get(ctx context.Context, key string) ([]byte, string, error) {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	data, ok := self.objects[key]
	if !ok {
		return nil, "", storage.ErrNotFound
	}
	return data, self.contentTypes[key], nil
}

func (self *fakeObjects) Put(ctx context.Context, key string, data []byte, contentType string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if self.putErr != nil {
		return self.putErr
	}
	self.objects[key] = data
	self.contentTypes[key] = contentType
	return nil
}

func (self *fakeObjects) Remove(ctx context.Context, key string) error {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	if _, ok := self.objects[key]; !ok {
		return storage.ErrNotFound
	}
	delete(self.objects, key)
	delete(self.contentTypes, key)
	return nil
}

func (self *fakeObjects) has(key string) bool {
	self.mtx.Lock()
	defer self.mtx.Unlock()
	_, ok := self.objects[key]
	return ok
}

var _ ObjectStore = (*fakeObjects)(nil)

// Canned payment lookup
type fakeLookup struct {
	payment *payment.Payment
	err     error
	calls   int
}

func (self *fakeLookup) GetPayment(ctx context.Context, paymentId string) (*payment.Payment, error) {
	self.calls++
	if self.err != nil {
		return nil, self.err
	}
	return self.payment, nil
}

var _ payment.Lookup = (*fakeLookup)(nil)
