package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BindingService orchestrates bind and unbind against the binding store and
// the credential issuer. The one-active-binding-per-application rule is
// enforced with a pre-check plus the store's constraint as final authority;
// two concurrent binds with distinct binding ids for the same application can
// slip past the pre-check, a narrow window accepted by the catalog policy.
type BindingService struct {
	runtime
	instances InstanceStore
	bindings  BindingStore
	issuer    CredentialIssuer
}

func NewBindingService(cfg Config, options ...Option) (*BindingService, error) {
	rt, builder, err := resolveRuntime(cfg, options...)
	if err != nil {
		return nil, err
	}
	if builder.instanceStore == nil {
		return nil, mapBuildError(rt.errorMapper, fmt.Errorf("core: instance store is required"))
	}
	if builder.bindingStore == nil {
		return nil, mapBuildError(rt.errorMapper, fmt.Errorf("core: binding store is required"))
	}
	return &BindingService{
		runtime:   rt,
		instances: builder.instanceStore,
		bindings:  builder.bindingStore,
		issuer:    builder.credentialIssuer,
	}, nil
}

func (s *BindingService) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Bind creates the binding with a freshly generated credential pair. The
// plaintext pair is returned only when this call created the row; an
// idempotent replay answers OutcomeAlreadyBound with no credentials.
func (s *BindingService) Bind(ctx context.Context, req BindRequest) (result BindResult, err error) {
	if s == nil || s.instances == nil || s.bindings == nil || s.issuer == nil {
		return BindResult{}, s.mapError(fmt.Errorf("core: binding service is not fully configured"))
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"binding_id":          req.BindingID,
		"app_id":              req.AppID,
		"service_instance_id": req.ServiceInstanceID,
	}
	defer func() {
		fields["outcome"] = string(result.Outcome)
		s.observeOperation(ctx, startedAt, "bind", err, fields)
	}()

	bindingID := strings.TrimSpace(req.BindingID)
	appID := strings.TrimSpace(req.AppID)
	instanceID := strings.TrimSpace(req.ServiceInstanceID)
	if bindingID == "" || appID == "" || instanceID == "" {
		err = s.mapError(fmt.Errorf("core: binding id, app id, and service instance id are required"))
		return BindResult{}, err
	}

	if _, getErr := s.instances.Get(ctx, instanceID); getErr != nil {
		if errors.Is(getErr, ErrInstanceNotFound) {
			return BindResult{
				Outcome: OutcomeInstanceNotFound,
				Message: fmt.Sprintf("service instance %q does not exist", instanceID),
			}, nil
		}
		err = s.mapError(getErr)
		return BindResult{}, err
	}

	// Cheap fail-fast before generating a credential and attempting a doomed
	// insert. The store's constraints remain the final authority.
	active, countErr := s.bindings.CountActiveForApplication(ctx, appID)
	if countErr != nil {
		err = s.mapError(countErr)
		return BindResult{}, err
	}
	if active > 0 {
		// The active binding may be this very key: a replayed request stays
		// idempotent and must not consume another credential.
		existing, getErr := s.bindings.Get(ctx, bindingID)
		switch {
		case getErr == nil:
			if existing.Matches(appID, instanceID) {
				return BindResult{
					Outcome: OutcomeAlreadyBound,
					Binding: existing,
				}, nil
			}
			return BindResult{
				Outcome: OutcomeConflict,
				Message: fmt.Sprintf("binding %q already exists with different attributes", bindingID),
			}, nil
		case errors.Is(getErr, ErrBindingNotFound):
			return BindResult{
				Outcome: OutcomeDuplicateApplicationBinding,
				Message: s.duplicateBindingMessage(appID),
			}, nil
		default:
			err = s.mapError(getErr)
			return BindResult{}, err
		}
	}

	credential, generateErr := s.issuer.Generate()
	if generateErr != nil {
		err = s.mapError(generateErr)
		return BindResult{}, err
	}
	passwordHash, hashErr := s.issuer.Hash(credential.Password)
	if hashErr != nil {
		err = s.mapError(hashErr)
		return BindResult{}, err
	}

	found, storeErr := s.bindings.FindOrCreate(ctx, FindOrCreateBindingInput{
		BindingID:         bindingID,
		AppID:             appID,
		ServiceInstanceID: instanceID,
		Username:          credential.Username,
		PasswordHash:      passwordHash,
	})
	if storeErr != nil {
		switch {
		case errors.Is(storeErr, ErrInstanceNotFound):
			// The instance passed the existence check but was deprovisioned
			// before the insert landed.
			return BindResult{
				Outcome: OutcomeInstanceNotFound,
				Message: fmt.Sprintf("service instance %q does not exist", instanceID),
			}, nil
		case errors.Is(storeErr, ErrConcurrentModification):
			return BindResult{
				Outcome: OutcomeConflict,
				Message: fmt.Sprintf("binding %q was modified concurrently", bindingID),
			}, nil
		}
		err = s.mapError(storeErr)
		return BindResult{}, err
	}

	if found.Created {
		return BindResult{
			Outcome:     OutcomeCreated,
			Binding:     found.Binding,
			Credentials: &credential,
		}, nil
	}
	if found.Binding.Matches(appID, instanceID) {
		return BindResult{
			Outcome: OutcomeAlreadyBound,
			Binding: found.Binding,
		}, nil
	}
	return BindResult{
		Outcome: OutcomeConflict,
		Message: fmt.Sprintf("binding %q already exists with different attributes", bindingID),
	}, nil
}

// Unbind removes the binding; the store cascades removal of the credential
// record.
func (s *BindingService) Unbind(ctx context.Context, req UnbindRequest) (result UnbindResult, err error) {
	if s == nil || s.bindings == nil {
		return UnbindResult{}, s.mapError(fmt.Errorf("core: binding store is required for unbinding"))
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"binding_id": req.BindingID,
	}
	defer func() {
		fields["outcome"] = string(result.Outcome)
		s.observeOperation(ctx, startedAt, "unbind", err, fields)
	}()

	bindingID := strings.TrimSpace(req.BindingID)
	if bindingID == "" {
		err = s.mapError(fmt.Errorf("core: binding id is required"))
		return UnbindResult{}, err
	}

	deleted, storeErr := s.bindings.Delete(ctx, bindingID)
	if storeErr != nil {
		err = s.mapError(storeErr)
		return UnbindResult{}, err
	}
	if deleted == 0 {
		return UnbindResult{Outcome: OutcomeGone}, nil
	}
	return UnbindResult{Outcome: OutcomeDeleted}, nil
}

func (s *BindingService) duplicateBindingMessage(appID string) string {
	return fmt.Sprintf(
		"application %q already has an active binding for offering %q; unbind it before binding again",
		appID, s.config.ServiceName,
	)
}
