package query

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-servicebroker/core"
)

func TestGetBindingMessage_ValidateReturnsRichError(t *testing.T) {
	err := (GetBindingMessage{}).Validate()
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
