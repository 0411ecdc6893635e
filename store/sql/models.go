package sqlstore

import (
	"time"

	"github.com/goliatone/go-servicebroker/core"
	"github.com/uptrace/bun"
)

type instanceRecord struct {
	bun.BaseModel `bun:"table:service_instances,alias:si"`

	ServiceInstanceID string    `bun:"service_instance_id,pk"`
	OrgID             string    `bun:"org_id,notnull"`
	SpaceID           string    `bun:"space_id,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *instanceRecord) toDomain() core.ServiceInstance {
	if r == nil {
		return core.ServiceInstance{}
	}
	return core.ServiceInstance{
		ServiceInstanceID: r.ServiceInstanceID,
		OrgID:             r.OrgID,
		SpaceID:           r.SpaceID,
		CreatedAt:         r.CreatedAt,
	}
}

type bindingRecord struct {
	bun.BaseModel `bun:"table:service_bindings,alias:sb"`

	BindingID         string    `bun:"binding_id,pk"`
	AppID             string    `bun:"app_id,notnull"`
	ServiceInstanceID string    `bun:"service_instance_id,notnull"`
	CreatedAt         time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *bindingRecord) toDomain() core.Binding {
	if r == nil {
		return core.Binding{}
	}
	return core.Binding{
		BindingID:         r.BindingID,
		AppID:             r.AppID,
		ServiceInstanceID: r.ServiceInstanceID,
		CreatedAt:         r.CreatedAt,
	}
}

type bindingCredentialRecord struct {
	bun.BaseModel `bun:"table:binding_credentials,alias:bc"`

	BindingID    string    `bun:"binding_id,pk"`
	Username     string    `bun:"username,notnull"`
	PasswordHash string    `bun:"password_hash,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func (r *bindingCredentialRecord) toDomain() core.StoredCredential {
	if r == nil {
		return core.StoredCredential{}
	}
	return core.StoredCredential{
		BindingID:    r.BindingID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
	}
}
