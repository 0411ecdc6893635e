package query

import "strings"

const (
	TypeGetServiceInstance = "broker.query.instance.get"
	TypeGetBinding         = "broker.query.binding.get"
	TypeGetCredential      = "broker.query.credential.get"
)

type GetServiceInstanceMessage struct {
	ServiceInstanceID string
}

func (GetServiceInstanceMessage) Type() string { return TypeGetServiceInstance }

func (m GetServiceInstanceMessage) Validate() error {
	if strings.TrimSpace(m.ServiceInstanceID) == "" {
		return queryValidationError("serviceInstanceId", "service instance id is required")
	}
	return nil
}

type GetBindingMessage struct {
	BindingID string
}

func (GetBindingMessage) Type() string { return TypeGetBinding }

func (m GetBindingMessage) Validate() error {
	if strings.TrimSpace(m.BindingID) == "" {
		return queryValidationError("bindingId", "binding id is required")
	}
	return nil
}

type GetCredentialMessage struct {
	Username string
}

func (GetCredentialMessage) Type() string { return TypeGetCredential }

func (m GetCredentialMessage) Validate() error {
	if strings.TrimSpace(m.Username) == "" {
		return queryValidationError("username", "username is required")
	}
	return nil
}
