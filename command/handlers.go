package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-servicebroker/core"
)

type ProvisioningMutatingService interface {
	Provision(ctx context.Context, req core.ProvisionRequest) (core.ProvisionResult, error)
	Deprovision(ctx context.Context, req core.DeprovisionRequest) (core.DeprovisionResult, error)
}

type BindingMutatingService interface {
	Bind(ctx context.Context, req core.BindRequest) (core.BindResult, error)
	Unbind(ctx context.Context, req core.UnbindRequest) (core.UnbindResult, error)
}

type ProvisionCommand struct {
	service ProvisioningMutatingService
}

func NewProvisionCommand(service ProvisioningMutatingService) *ProvisionCommand {
	return &ProvisionCommand{service: service}
}

func (c *ProvisionCommand) Execute(ctx context.Context, msg ProvisionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	out, err := c.service.Provision(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type DeprovisionCommand struct {
	service ProvisioningMutatingService
}

func NewDeprovisionCommand(service ProvisioningMutatingService) *DeprovisionCommand {
	return &DeprovisionCommand{service: service}
}

func (c *DeprovisionCommand) Execute(ctx context.Context, msg DeprovisionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: provisioning service is required")
	}
	out, err := c.service.Deprovision(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type BindCommand struct {
	service BindingMutatingService
}

func NewBindCommand(service BindingMutatingService) *BindCommand {
	return &BindCommand{service: service}
}

func (c *BindCommand) Execute(ctx context.Context, msg BindMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: binding service is required")
	}
	out, err := c.service.Bind(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UnbindCommand struct {
	service BindingMutatingService
}

func NewUnbindCommand(service BindingMutatingService) *UnbindCommand {
	return &UnbindCommand{service: service}
}

func (c *UnbindCommand) Execute(ctx context.Context, msg UnbindMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: binding service is required")
	}
	out, err := c.service.Unbind(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
