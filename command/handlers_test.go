package command

import (
	"context"
	"testing"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-servicebroker/core"
)

type stubProvisioningService struct {
	provisionFn   func(ctx context.Context, req core.ProvisionRequest) (core.ProvisionResult, error)
	deprovisionFn func(ctx context.Context, req core.DeprovisionRequest) (core.DeprovisionResult, error)
}

func (s stubProvisioningService) Provision(ctx context.Context, req core.ProvisionRequest) (core.ProvisionResult, error) {
	if s.provisionFn == nil {
		return core.ProvisionResult{}, nil
	}
	return s.provisionFn(ctx, req)
}

func (s stubProvisioningService) Deprovision(ctx context.Context, req core.DeprovisionRequest) (core.DeprovisionResult, error) {
	if s.deprovisionFn == nil {
		return core.DeprovisionResult{}, nil
	}
	return s.deprovisionFn(ctx, req)
}

type stubBindingService struct {
	bindFn   func(ctx context.Context, req core.BindRequest) (core.BindResult, error)
	unbindFn func(ctx context.Context, req core.UnbindRequest) (core.UnbindResult, error)
}

func (s stubBindingService) Bind(ctx context.Context, req core.BindRequest) (core.BindResult, error) {
	if s.bindFn == nil {
		return core.BindResult{}, nil
	}
	return s.bindFn(ctx, req)
}

func (s stubBindingService) Unbind(ctx context.Context, req core.UnbindRequest) (core.UnbindResult, error) {
	if s.unbindFn == nil {
		return core.UnbindResult{}, nil
	}
	return s.unbindFn(ctx, req)
}

func TestProvisionCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := core.ProvisionResult{Outcome: core.OutcomeCreated}
	called := false

	svc := stubProvisioningService{
		provisionFn: func(_ context.Context, req core.ProvisionRequest) (core.ProvisionResult, error) {
			called = true
			if req.ServiceInstanceID != "svc_1" {
				t.Fatalf("expected instance svc_1, got %q", req.ServiceInstanceID)
			}
			return expected, nil
		},
	}

	cmd := NewProvisionCommand(svc)
	collector := gocmd.NewResult[core.ProvisionResult]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, ProvisionMessage{Request: core.ProvisionRequest{
		ServiceInstanceID: "svc_1",
		OrgID:             "org_1",
		SpaceID:           "space_1",
	}})
	if err != nil {
		t.Fatalf("execute provision: %v", err)
	}
	if !called {
		t.Fatalf("expected provisioning service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if result.Outcome != core.OutcomeCreated {
		t.Fatalf("unexpected result: %#v", result)
	}
}

func TestMutationCommands_DelegateToService(t *testing.T) {
	t.Run("deprovision", func(t *testing.T) {
		called := false
		svc := stubProvisioningService{
			deprovisionFn: func(_ context.Context, req core.DeprovisionRequest) (core.DeprovisionResult, error) {
				called = true
				if req.ServiceInstanceID != "svc_1" {
					t.Fatalf("unexpected deprovision payload: %q", req.ServiceInstanceID)
				}
				return core.DeprovisionResult{Outcome: core.OutcomeDeleted}, nil
			},
		}
		cmd := NewDeprovisionCommand(svc)
		collector := gocmd.NewResult[core.DeprovisionResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, DeprovisionMessage{Request: core.DeprovisionRequest{
			ServiceInstanceID: "svc_1",
		}}); err != nil {
			t.Fatalf("execute deprovision: %v", err)
		}
		if !called {
			t.Fatalf("expected deprovision invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected deprovision result")
		}
		if stored.Outcome != core.OutcomeDeleted {
			t.Fatalf("unexpected deprovision result: %#v", stored)
		}
	})

	t.Run("bind", func(t *testing.T) {
		credentials := core.BindingCredential{Username: "user_1", Password: "secret"}
		called := false
		svc := stubBindingService{
			bindFn: func(_ context.Context, req core.BindRequest) (core.BindResult, error) {
				called = true
				if req.BindingID != "bind_1" || req.AppID != "app_1" {
					t.Fatalf("unexpected bind payload: %#v", req)
				}
				return core.BindResult{
					Outcome:     core.OutcomeCreated,
					Credentials: &credentials,
				}, nil
			},
		}
		cmd := NewBindCommand(svc)
		collector := gocmd.NewResult[core.BindResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		err := cmd.Execute(ctx, BindMessage{Request: core.BindRequest{
			BindingID:         "bind_1",
			AppID:             "app_1",
			ServiceInstanceID: "svc_1",
		}})
		if err != nil {
			t.Fatalf("execute bind: %v", err)
		}
		if !called {
			t.Fatalf("expected bind invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected bind result")
		}
		if stored.Credentials == nil || stored.Credentials.Username != "user_1" {
			t.Fatalf("unexpected bind result: %#v", stored)
		}
	})

	t.Run("unbind", func(t *testing.T) {
		called := false
		svc := stubBindingService{
			unbindFn: func(_ context.Context, req core.UnbindRequest) (core.UnbindResult, error) {
				called = true
				if req.BindingID != "bind_1" {
					t.Fatalf("unexpected unbind payload: %q", req.BindingID)
				}
				return core.UnbindResult{Outcome: core.OutcomeGone}, nil
			},
		}
		cmd := NewUnbindCommand(svc)
		collector := gocmd.NewResult[core.UnbindResult]()
		ctx := gocmd.ContextWithResult(context.Background(), collector)
		if err := cmd.Execute(ctx, UnbindMessage{Request: core.UnbindRequest{
			BindingID: "bind_1",
		}}); err != nil {
			t.Fatalf("execute unbind: %v", err)
		}
		if !called {
			t.Fatalf("expected unbind invocation")
		}
		stored, ok := collector.Load()
		if !ok {
			t.Fatalf("expected unbind result")
		}
		if stored.Outcome != core.OutcomeGone {
			t.Fatalf("unexpected unbind result: %#v", stored)
		}
	})
}

func TestMessages_Validate(t *testing.T) {
	if err := (ProvisionMessage{Request: core.ProvisionRequest{
		ServiceInstanceID: "svc_1", OrgID: "org_1", SpaceID: "space_1",
	}}).Validate(); err != nil {
		t.Fatalf("valid provision message: %v", err)
	}
	if err := (BindMessage{Request: core.BindRequest{
		BindingID: "bind_1", AppID: "app_1", ServiceInstanceID: "svc_1",
	}}).Validate(); err != nil {
		t.Fatalf("valid bind message: %v", err)
	}
	if err := (BindMessage{Request: core.BindRequest{BindingID: "bind_1"}}).Validate(); err == nil {
		t.Fatalf("expected bind validation failure for missing app id")
	}
	if err := (UnbindMessage{}).Validate(); err == nil {
		t.Fatalf("expected unbind validation failure for missing binding id")
	}
	if err := (DeprovisionMessage{}).Validate(); err == nil {
		t.Fatalf("expected deprovision validation failure for missing instance id")
	}
}
