package command

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-servicebroker/core"
)

func TestProvisionMessage_ValidateReturnsRichError(t *testing.T) {
	err := (ProvisionMessage{}).Validate()
	if err == nil {
		t.Fatalf("expected validation error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryValidation {
		t.Fatalf("expected validation category, got %q", rich.Category)
	}
	if rich.TextCode != core.BrokerErrorBadInput {
		t.Fatalf("expected %q text code, got %q", core.BrokerErrorBadInput, rich.TextCode)
	}
}

func TestProvisionCommand_NilServiceReturnsRichError(t *testing.T) {
	var cmd *ProvisionCommand
	err := cmd.Execute(context.Background(), ProvisionMessage{})
	if err == nil {
		t.Fatalf("expected command dependency error")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected go-errors envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryInternal {
		t.Fatalf("expected internal category, got %q", rich.Category)
	}
}
