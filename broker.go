package broker

import "github.com/goliatone/go-servicebroker/core"

type Config = core.Config

type CredentialConfig = core.CredentialConfig

type Option = core.Option

type ProvisioningService = core.ProvisioningService
type BindingService = core.BindingService

type InstanceStore = core.InstanceStore
type BindingStore = core.BindingStore
type CredentialIssuer = core.CredentialIssuer

type ServiceInstance = core.ServiceInstance
type Binding = core.Binding
type BindingCredential = core.BindingCredential
type StoredCredential = core.StoredCredential

type Outcome = core.Outcome

type ProvisionRequest = core.ProvisionRequest
type ProvisionResult = core.ProvisionResult
type DeprovisionRequest = core.DeprovisionRequest
type DeprovisionResult = core.DeprovisionResult
type BindRequest = core.BindRequest
type BindResult = core.BindResult
type UnbindRequest = core.UnbindRequest
type UnbindResult = core.UnbindResult

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithInstanceStore     = core.WithInstanceStore
	WithBindingStore      = core.WithBindingStore
	WithCredentialIssuer  = core.WithCredentialIssuer
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewProvisioningService(cfg Config, opts ...Option) (*ProvisioningService, error) {
	return core.NewProvisioningService(cfg, opts...)
}

func NewBindingService(cfg Config, opts ...Option) (*BindingService, error) {
	return core.NewBindingService(cfg, opts...)
}
