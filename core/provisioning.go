package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ProvisioningService orchestrates service instance creation and deletion.
// It takes no locks of its own; the instance store's key uniqueness is the
// only synchronization point between concurrent callers.
type ProvisioningService struct {
	runtime
	instances InstanceStore
}

func NewProvisioningService(cfg Config, options ...Option) (*ProvisioningService, error) {
	rt, builder, err := resolveRuntime(cfg, options...)
	if err != nil {
		return nil, err
	}
	if builder.instanceStore == nil {
		return nil, mapBuildError(rt.errorMapper, fmt.Errorf("core: instance store is required"))
	}
	return &ProvisioningService{
		runtime:   rt,
		instances: builder.instanceStore,
	}, nil
}

func (s *ProvisioningService) Config() Config {
	if s == nil {
		return Config{}
	}
	return s.config
}

// Provision creates the instance or reconciles a repeated request. Retried
// identical requests resolve to OutcomeAlreadyExists; a reused id with
// different tenancy attributes resolves to OutcomeConflict. Exactly one of
// any set of concurrent callers for a key observes OutcomeCreated.
func (s *ProvisioningService) Provision(ctx context.Context, req ProvisionRequest) (result ProvisionResult, err error) {
	if s == nil || s.instances == nil {
		return ProvisionResult{}, s.mapError(fmt.Errorf("core: instance store is required for provisioning"))
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"service_instance_id": req.ServiceInstanceID,
		"org_id":              req.OrgID,
		"space_id":            req.SpaceID,
	}
	defer func() {
		fields["outcome"] = string(result.Outcome)
		s.observeOperation(ctx, startedAt, "provision", err, fields)
	}()

	instanceID := strings.TrimSpace(req.ServiceInstanceID)
	orgID := strings.TrimSpace(req.OrgID)
	spaceID := strings.TrimSpace(req.SpaceID)
	if instanceID == "" || orgID == "" || spaceID == "" {
		err = s.mapError(fmt.Errorf("core: service instance id, org id, and space id are required"))
		return ProvisionResult{}, err
	}

	found, storeErr := s.instances.FindOrCreate(ctx, FindOrCreateInstanceInput{
		ServiceInstanceID: instanceID,
		OrgID:             orgID,
		SpaceID:           spaceID,
	})
	if storeErr != nil {
		if errors.Is(storeErr, ErrConcurrentModification) {
			// Lost the insert race and the winner's row vanished before the
			// re-read. The caller sees a conflict and retries.
			return ProvisionResult{
				Outcome: OutcomeConflict,
				Message: fmt.Sprintf("service instance %q was modified concurrently", instanceID),
			}, nil
		}
		err = s.mapError(storeErr)
		return ProvisionResult{}, err
	}

	if found.Created {
		return ProvisionResult{
			Outcome:      OutcomeCreated,
			Instance:     found.Instance,
			DashboardURL: s.config.DashboardURL,
		}, nil
	}
	if found.Instance.Matches(orgID, spaceID) {
		return ProvisionResult{
			Outcome:      OutcomeAlreadyExists,
			Instance:     found.Instance,
			DashboardURL: s.config.DashboardURL,
		}, nil
	}
	return ProvisionResult{
		Outcome: OutcomeConflict,
		Message: fmt.Sprintf("service instance %q already exists with different attributes", instanceID),
	}, nil
}

// Deprovision removes the instance. An instance with active bindings cannot
// be removed; callers must unbind first.
func (s *ProvisioningService) Deprovision(ctx context.Context, req DeprovisionRequest) (result DeprovisionResult, err error) {
	if s == nil || s.instances == nil {
		return DeprovisionResult{}, s.mapError(fmt.Errorf("core: instance store is required for deprovisioning"))
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"service_instance_id": req.ServiceInstanceID,
	}
	defer func() {
		fields["outcome"] = string(result.Outcome)
		s.observeOperation(ctx, startedAt, "deprovision", err, fields)
	}()

	instanceID := strings.TrimSpace(req.ServiceInstanceID)
	if instanceID == "" {
		err = s.mapError(fmt.Errorf("core: service instance id is required"))
		return DeprovisionResult{}, err
	}

	deleted, storeErr := s.instances.Delete(ctx, instanceID)
	if storeErr != nil {
		if errors.Is(storeErr, ErrInstanceHasBindings) {
			return DeprovisionResult{
				Outcome: OutcomeInstanceHasBindings,
				Message: fmt.Sprintf("service instance %q still has active bindings", instanceID),
			}, nil
		}
		err = s.mapError(storeErr)
		return DeprovisionResult{}, err
	}
	if deleted == 0 {
		return DeprovisionResult{Outcome: OutcomeGone}, nil
	}
	return DeprovisionResult{Outcome: OutcomeDeleted}, nil
}
