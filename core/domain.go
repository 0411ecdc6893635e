package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrInstanceNotFound       = errors.New("core: service instance not found")
	ErrBindingNotFound        = errors.New("core: binding not found")
	ErrCredentialNotFound     = errors.New("core: binding credential not found")
	ErrInstanceHasBindings    = errors.New("core: service instance has active bindings")
	ErrConcurrentModification = errors.New("core: record changed concurrently")
)

// ServiceInstance is a provisioned abstract resource keyed by a
// caller-supplied id. OrgID and SpaceID are immutable once set.
type ServiceInstance struct {
	ServiceInstanceID string
	OrgID             string
	SpaceID           string
	CreatedAt         time.Time
}

// Matches reports whether the instance carries the same immutable tenancy
// attributes as the request. A same-id request with a different payload is
// a conflict, never a silent accept.
func (i ServiceInstance) Matches(orgID, spaceID string) bool {
	return i.OrgID == strings.TrimSpace(orgID) && i.SpaceID == strings.TrimSpace(spaceID)
}

// Binding associates an application with a service instance. The owning
// instance must exist for the binding's lifetime.
type Binding struct {
	BindingID         string
	AppID             string
	ServiceInstanceID string
	CreatedAt         time.Time
}

// Matches reports whether the binding targets the same application and
// instance as the request.
func (b Binding) Matches(appID, serviceInstanceID string) bool {
	return b.AppID == strings.TrimSpace(appID) &&
		b.ServiceInstanceID == strings.TrimSpace(serviceInstanceID)
}

// BindingCredential is a freshly generated plaintext username/password pair.
// It is returned to the caller exactly once on first creation and is never
// persisted or logged.
type BindingCredential struct {
	Username string
	Password string
}

// StoredCredential is the at-rest form of a binding credential. The plaintext
// password is replaced by a one-way salted hash before it reaches a store.
type StoredCredential struct {
	BindingID    string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
