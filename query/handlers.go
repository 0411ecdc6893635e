package query

import (
	"context"

	"github.com/goliatone/go-servicebroker/core"
)

type InstanceReader interface {
	Get(ctx context.Context, id string) (core.ServiceInstance, error)
}

type BindingReader interface {
	Get(ctx context.Context, id string) (core.Binding, error)
	FindCredentialByUsername(ctx context.Context, username string) (core.StoredCredential, error)
}

type GetServiceInstanceQuery struct {
	reader InstanceReader
}

func NewGetServiceInstanceQuery(reader InstanceReader) *GetServiceInstanceQuery {
	return &GetServiceInstanceQuery{reader: reader}
}

func (q *GetServiceInstanceQuery) Query(
	ctx context.Context,
	msg GetServiceInstanceMessage,
) (core.ServiceInstance, error) {
	if q == nil || q.reader == nil {
		return core.ServiceInstance{}, queryDependencyError("query: instance reader is required")
	}
	return q.reader.Get(ctx, msg.ServiceInstanceID)
}

type GetBindingQuery struct {
	reader BindingReader
}

func NewGetBindingQuery(reader BindingReader) *GetBindingQuery {
	return &GetBindingQuery{reader: reader}
}

func (q *GetBindingQuery) Query(ctx context.Context, msg GetBindingMessage) (core.Binding, error) {
	if q == nil || q.reader == nil {
		return core.Binding{}, queryDependencyError("query: binding reader is required")
	}
	return q.reader.Get(ctx, msg.BindingID)
}

type GetCredentialQuery struct {
	reader BindingReader
}

func NewGetCredentialQuery(reader BindingReader) *GetCredentialQuery {
	return &GetCredentialQuery{reader: reader}
}

func (q *GetCredentialQuery) Query(
	ctx context.Context,
	msg GetCredentialMessage,
) (core.StoredCredential, error) {
	if q == nil || q.reader == nil {
		return core.StoredCredential{}, queryDependencyError("query: binding reader is required")
	}
	return q.reader.FindCredentialByUsername(ctx, msg.Username)
}
