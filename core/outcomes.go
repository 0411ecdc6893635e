package core

import "net/http"

// Outcome is the protocol-level result of a lifecycle operation. Every
// operation resolves to a structured outcome rather than a raw storage
// error; the HTTP layer maps outcomes onto status codes.
type Outcome string

const (
	OutcomeCreated                     Outcome = "created"
	OutcomeAlreadyExists               Outcome = "already_exists"
	OutcomeAlreadyBound                Outcome = "already_bound"
	OutcomeConflict                    Outcome = "conflict"
	OutcomeDeleted                     Outcome = "deleted"
	OutcomeGone                        Outcome = "gone"
	OutcomeInstanceNotFound            Outcome = "instance_not_found"
	OutcomeInstanceHasBindings         Outcome = "instance_has_bindings"
	OutcomeDuplicateApplicationBinding Outcome = "duplicate_application_binding"
)

// HTTPStatus maps the outcome onto the Open Service Broker status code
// convention used by the original broker: retried identical creates answer
// 200, conflicting reuse of a key answers 409, deletes of absent records
// answer 410.
func (o Outcome) HTTPStatus() int {
	switch o {
	case OutcomeCreated:
		return http.StatusCreated
	case OutcomeAlreadyExists, OutcomeAlreadyBound, OutcomeDeleted:
		return http.StatusOK
	case OutcomeConflict, OutcomeInstanceHasBindings, OutcomeDuplicateApplicationBinding:
		return http.StatusConflict
	case OutcomeGone:
		return http.StatusGone
	case OutcomeInstanceNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type ProvisionRequest struct {
	ServiceInstanceID string
	OrgID             string
	SpaceID           string
}

type ProvisionResult struct {
	Outcome      Outcome
	Instance     ServiceInstance
	DashboardURL string
	Message      string
}

type DeprovisionRequest struct {
	ServiceInstanceID string
}

type DeprovisionResult struct {
	Outcome Outcome
	Message string
}

type BindRequest struct {
	BindingID         string
	AppID             string
	ServiceInstanceID string
}

// BindResult carries plaintext credentials only when Outcome is
// OutcomeCreated. An idempotent replay reports OutcomeAlreadyBound with nil
// Credentials; the original plaintext is gone for good and is never
// re-disclosed.
type BindResult struct {
	Outcome     Outcome
	Binding     Binding
	Credentials *BindingCredential
	Message     string
}

type UnbindRequest struct {
	BindingID string
}

type UnbindResult struct {
	Outcome Outcome
	Message string
}
