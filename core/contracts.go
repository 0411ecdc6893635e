package core

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)

type FindOrCreateInstanceInput struct {
	ServiceInstanceID string
	OrgID             string
	SpaceID           string
}

// InstanceResult reports the record backing a find-or-create call and whether
// this call inserted it. Created is true for exactly one caller per key.
type InstanceResult struct {
	Instance ServiceInstance
	Created  bool
}

// InstanceStore is the durable keyed table of service instances. The store's
// insert-time uniqueness check on ServiceInstanceID is the single point of
// truth for concurrent creates; implementations must never reserve the key
// with a read-then-insert sequence.
type InstanceStore interface {
	// FindOrCreate atomically inserts the instance or, when the key is
	// already taken, returns the existing row with Created=false. Payload
	// comparison is the orchestrator's job.
	FindOrCreate(ctx context.Context, in FindOrCreateInstanceInput) (InstanceResult, error)
	Get(ctx context.Context, serviceInstanceID string) (ServiceInstance, error)
	// Delete removes the row and reports how many rows went away. It returns
	// ErrInstanceHasBindings when the store's restrict-on-delete constraint
	// blocks the removal.
	Delete(ctx context.Context, serviceInstanceID string) (int64, error)
}

type FindOrCreateBindingInput struct {
	BindingID         string
	AppID             string
	ServiceInstanceID string
	Username          string
	PasswordHash      string
}

type BindingResult struct {
	Binding Binding
	Created bool
}

// BindingStore is the durable keyed table of bindings and their credential
// records. Each created binding owns exactly one credential row; deleting
// the binding cascades to the credential.
type BindingStore interface {
	// FindOrCreate atomically inserts the binding together with its
	// credential record, or returns the existing binding with Created=false
	// when the key is already taken. It returns ErrInstanceNotFound when the
	// referenced instance does not exist at insert time.
	FindOrCreate(ctx context.Context, in FindOrCreateBindingInput) (BindingResult, error)
	Get(ctx context.Context, bindingID string) (Binding, error)
	CountActiveForApplication(ctx context.Context, appID string) (int, error)
	Delete(ctx context.Context, bindingID string) (int64, error)
	FindCredentialByUsername(ctx context.Context, username string) (StoredCredential, error)
}

// CredentialIssuer produces and checks binding credentials. Generate and Hash
// are pure apart from randomness consumption.
type CredentialIssuer interface {
	Generate() (BindingCredential, error)
	Hash(plaintext string) (string, error)
	Verify(plaintext string, passwordHash string) bool
}

type StoreProvider interface {
	InstanceStore() InstanceStore
	BindingStore() BindingStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type ErrorFactory func(message string, category ...goerrors.Category) *goerrors.Error

type ErrorMapper func(err error) *goerrors.Error

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
