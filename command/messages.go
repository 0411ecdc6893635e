package command

import (
	"strings"

	"github.com/goliatone/go-servicebroker/core"
)

const (
	TypeProvision   = "broker.command.instance.provision"
	TypeDeprovision = "broker.command.instance.deprovision"
	TypeBind        = "broker.command.binding.bind"
	TypeUnbind      = "broker.command.binding.unbind"
)

type ProvisionMessage struct {
	Request core.ProvisionRequest
}

func (ProvisionMessage) Type() string { return TypeProvision }

func (m ProvisionMessage) Validate() error {
	if strings.TrimSpace(m.Request.ServiceInstanceID) == "" {
		return commandValidationError("serviceInstanceId", "service instance id is required")
	}
	if strings.TrimSpace(m.Request.OrgID) == "" {
		return commandValidationError("organizationId", "organization id is required")
	}
	if strings.TrimSpace(m.Request.SpaceID) == "" {
		return commandValidationError("spaceId", "space id is required")
	}
	return nil
}

type DeprovisionMessage struct {
	Request core.DeprovisionRequest
}

func (DeprovisionMessage) Type() string { return TypeDeprovision }

func (m DeprovisionMessage) Validate() error {
	if strings.TrimSpace(m.Request.ServiceInstanceID) == "" {
		return commandValidationError("serviceInstanceId", "service instance id is required")
	}
	return nil
}

type BindMessage struct {
	Request core.BindRequest
}

func (BindMessage) Type() string { return TypeBind }

func (m BindMessage) Validate() error {
	if strings.TrimSpace(m.Request.BindingID) == "" {
		return commandValidationError("bindingId", "binding id is required")
	}
	if strings.TrimSpace(m.Request.AppID) == "" {
		return commandValidationError("appId", "application id is required")
	}
	if strings.TrimSpace(m.Request.ServiceInstanceID) == "" {
		return commandValidationError("serviceInstanceId", "service instance id is required")
	}
	return nil
}

type UnbindMessage struct {
	Request core.UnbindRequest
}

func (UnbindMessage) Type() string { return TypeUnbind }

func (m UnbindMessage) Validate() error {
	if strings.TrimSpace(m.Request.BindingID) == "" {
		return commandValidationError("bindingId", "binding id is required")
	}
	return nil
}
