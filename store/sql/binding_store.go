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

var errBindingReplay = errors.New("sqlstore: binding idempotency replay")

// BindingStore persists bindings and their credential records. A binding and
// its credential are written in one transaction so no binding row is ever
// observable without a matching credential.
type BindingStore struct {
	db             *bun.DB
	repo           repository.Repository[*bindingRecord]
	credentialRepo repository.Repository[*bindingCredentialRecord]
}

func NewBindingStore(db *bun.DB) (*BindingStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*bindingRecord](db, bindingHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid binding repository wiring: %w", err)
		}
	}
	credentialRepo := repository.NewRepository[*bindingCredentialRecord](db, credentialHandlers())
	if validator, ok := credentialRepo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid binding credential repository wiring: %w", err)
		}
	}
	return &BindingStore{
		db:             db,
		repo:           repo,
		credentialRepo: credentialRepo,
	}, nil
}

// FindOrCreate inserts the binding and its credential record atomically. A
// unique violation on the binding key rolls the transaction back and the
// winning row is re-read for reconciliation; a foreign key violation means
// the referenced instance does not exist.
func (s *BindingStore) FindOrCreate(
	ctx context.Context,
	in core.FindOrCreateBindingInput,
) (core.BindingResult, error) {
	if s == nil || s.db == nil {
		return core.BindingResult{}, fmt.Errorf("sqlstore: binding store is not configured")
	}
	normalized, err := normalizeFindOrCreateBindingInput(in)
	if err != nil {
		return core.BindingResult{}, err
	}

	created, createErr := s.createBindingWithCredential(ctx, normalized)
	if createErr == nil {
		return core.BindingResult{
			Binding: created,
			Created: true,
		}, nil
	}
	if isForeignKeyViolation(createErr) {
		return core.BindingResult{}, fmt.Errorf(
			"%w: id %q", core.ErrInstanceNotFound, normalized.ServiceInstanceID,
		)
	}
	if !errors.Is(createErr, errBindingReplay) {
		return core.BindingResult{}, createErr
	}

	existing, getErr := s.Get(ctx, normalized.BindingID)
	if getErr != nil {
		if errors.Is(getErr, core.ErrBindingNotFound) {
			return core.BindingResult{}, fmt.Errorf(
				"%w: binding %q vanished between insert and re-read",
				core.ErrConcurrentModification, normalized.BindingID,
			)
		}
		return core.BindingResult{}, getErr
	}
	return core.BindingResult{
		Binding: existing,
		Created: false,
	}, nil
}

func (s *BindingStore) Get(ctx context.Context, id string) (core.Binding, error) {
	if s == nil || s.db == nil {
		return core.Binding{}, fmt.Errorf("sqlstore: binding store is not configured")
	}
	record := &bindingRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.binding_id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Binding{}, fmt.Errorf("%w: id %q", core.ErrBindingNotFound, id)
		}
		return core.Binding{}, err
	}
	return record.toDomain(), nil
}

func (s *BindingStore) CountActiveForApplication(ctx context.Context, appID string) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: binding store is not configured")
	}
	count, err := s.db.NewSelect().
		Model((*bindingRecord)(nil)).
		Where("?TableAlias.app_id = ?", strings.TrimSpace(appID)).
		Count(ctx)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the binding and its credential record in one transaction.
func (s *BindingStore) Delete(ctx context.Context, id string) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: binding store is not configured")
	}
	bindingID := strings.TrimSpace(id)
	if bindingID == "" {
		return 0, fmt.Errorf("sqlstore: binding id is required")
	}

	var deleted int64
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*bindingCredentialRecord)(nil)).
			Where("binding_id = ?", bindingID).
			Exec(ctx); err != nil {
			return err
		}
		result, err := tx.NewDelete().
			Model((*bindingRecord)(nil)).
			Where("binding_id = ?", bindingID).
			Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func (s *BindingStore) FindCredentialByUsername(
	ctx context.Context,
	username string,
) (core.StoredCredential, error) {
	if s == nil || s.db == nil {
		return core.StoredCredential{}, fmt.Errorf("sqlstore: binding store is not configured")
	}
	record := &bindingCredentialRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", strings.TrimSpace(username)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.StoredCredential{}, fmt.Errorf(
				"%w: username %q", core.ErrCredentialNotFound, username,
			)
		}
		return core.StoredCredential{}, err
	}
	return record.toDomain(), nil
}

func (s *BindingStore) createBindingWithCredential(
	ctx context.Context,
	in core.FindOrCreateBindingInput,
) (core.Binding, error) {
	var created core.Binding
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now().UTC()
		bindingRow := &bindingRecord{
			BindingID:         in.BindingID,
			AppID:             in.AppID,
			ServiceInstanceID: in.ServiceInstanceID,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, insertErr := tx.NewInsert().Model(bindingRow).Exec(ctx); insertErr != nil {
			if isUniqueViolation(insertErr) {
				return errBindingReplay
			}
			return insertErr
		}

		credentialRow := &bindingCredentialRecord{
			BindingID:    in.BindingID,
			Username:     in.Username,
			PasswordHash: in.PasswordHash,
			CreatedAt:    now,
		}
		if _, insertErr := tx.NewInsert().Model(credentialRow).Exec(ctx); insertErr != nil {
			return insertErr
		}
		created = bindingRow.toDomain()
		return nil
	})
	if err != nil {
		return core.Binding{}, err
	}
	return created, nil
}

func normalizeFindOrCreateBindingInput(
	in core.FindOrCreateBindingInput,
) (core.FindOrCreateBindingInput, error) {
	normalized := core.FindOrCreateBindingInput{
		BindingID:         strings.TrimSpace(in.BindingID),
		AppID:             strings.TrimSpace(in.AppID),
		ServiceInstanceID: strings.TrimSpace(in.ServiceInstanceID),
		Username:          strings.TrimSpace(in.Username),
		PasswordHash:      in.PasswordHash,
	}
	if normalized.BindingID == "" || normalized.AppID == "" || normalized.ServiceInstanceID == "" {
		return core.FindOrCreateBindingInput{}, fmt.Errorf(
			"sqlstore: binding id, app id, and service instance id are required",
		)
	}
	if normalized.Username == "" || strings.TrimSpace(normalized.PasswordHash) == "" {
		return core.FindOrCreateBindingInput{}, fmt.Errorf(
			"sqlstore: credential username and password hash are required",
		)
	}
	return normalized, nil
}

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

func isForeignKeyViolation(err error) bool {
	if err == nil {
		return false
	}
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "foreign key constraint failed") ||
		strings.Contains(message, "violates foreign key constraint")
}
