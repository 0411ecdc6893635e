package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-servicebroker/core"
	"github.com/uptrace/bun"
)

// InstanceStore persists service instances. The primary key on
// service_instance_id is the only synchronization primitive: concurrent
// creators race on the insert and losers reconcile against the winning row.
type InstanceStore struct {
	db   *bun.DB
	repo repository.Repository[*instanceRecord]
}

func NewInstanceStore(db *bun.DB) (*InstanceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*instanceRecord](db, instanceHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid instance repository wiring: %w", err)
		}
	}
	return &InstanceStore{
		db:   db,
		repo: repo,
	}, nil
}

// FindOrCreate inserts the instance row and, when the key already exists,
// re-reads the winning row so the caller can reconcile payloads. A re-read
// miss means the row was deleted between the two statements.
func (s *InstanceStore) FindOrCreate(
	ctx context.Context,
	in core.FindOrCreateInstanceInput,
) (core.InstanceResult, error) {
	if s == nil || s.db == nil {
		return core.InstanceResult{}, fmt.Errorf("sqlstore: instance store is not configured")
	}
	instanceID := strings.TrimSpace(in.ServiceInstanceID)
	orgID := strings.TrimSpace(in.OrgID)
	spaceID := strings.TrimSpace(in.SpaceID)
	if instanceID == "" || orgID == "" || spaceID == "" {
		return core.InstanceResult{}, fmt.Errorf(
			"sqlstore: service instance id, org id, and space id are required",
		)
	}

	now := time.Now().UTC()
	record := &instanceRecord{
		ServiceInstanceID: instanceID,
		OrgID:             orgID,
		SpaceID:           spaceID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		if !isUniqueViolation(err) {
			return core.InstanceResult{}, err
		}
		existing, getErr := s.Get(ctx, instanceID)
		if getErr != nil {
			if errors.Is(getErr, core.ErrInstanceNotFound) {
				return core.InstanceResult{}, fmt.Errorf(
					"%w: instance %q vanished between insert and re-read",
					core.ErrConcurrentModification, instanceID,
				)
			}
			return core.InstanceResult{}, getErr
		}
		return core.InstanceResult{
			Instance: existing,
			Created:  false,
		}, nil
	}
	return core.InstanceResult{
		Instance: record.toDomain(),
		Created:  true,
	}, nil
}

func (s *InstanceStore) Get(ctx context.Context, id string) (core.ServiceInstance, error) {
	if s == nil || s.db == nil {
		return core.ServiceInstance{}, fmt.Errorf("sqlstore: instance store is not configured")
	}
	record := &instanceRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.service_instance_id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.ServiceInstance{}, fmt.Errorf("%w: id %q", core.ErrInstanceNotFound, id)
		}
		return core.ServiceInstance{}, err
	}
	return record.toDomain(), nil
}

// Delete removes the instance row. The bindings foreign key restricts the
// delete while bindings reference the instance; that violation surfaces as
// core.ErrInstanceHasBindings.
func (s *InstanceStore) Delete(ctx context.Context, id string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: instance store is not configured")
	}
	instanceID := strings.TrimSpace(id)
	if instanceID == "" {
		return 0, fmt.Errorf("sqlstore: service instance id is required")
	}

	result, err := s.db.NewDelete().
		Model((*instanceRecord)(nil)).
		Where("service_instance_id = ?", instanceID).
		Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return 0, fmt.Errorf("%w: id %q", core.ErrInstanceHasBindings, instanceID)
		}
		return 0, err
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
