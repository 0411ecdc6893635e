package sqlstore

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func instanceHandlers() repository.ModelHandlers[*instanceRecord] {
	return repository.ModelHandlers[*instanceRecord]{
		NewRecord: func() *instanceRecord {
			return &instanceRecord{}
		},
		GetID: func(record *instanceRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ServiceInstanceID)
		},
		SetID: func(record *instanceRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ServiceInstanceID = id.String()
		},
		GetIdentifier: func() string {
			return "service_instance_id"
		},
		GetIdentifierValue: func(record *instanceRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ServiceInstanceID)
		},
	}
}

func bindingHandlers() repository.ModelHandlers[*bindingRecord] {
	return repository.ModelHandlers[*bindingRecord]{
		NewRecord: func() *bindingRecord {
			return &bindingRecord{}
		},
		GetID: func(record *bindingRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.BindingID)
		},
		SetID: func(record *bindingRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.BindingID = id.String()
		},
		GetIdentifier: func() string {
			return "binding_id"
		},
		GetIdentifierValue: func(record *bindingRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.BindingID)
		},
	}
}

func credentialHandlers() repository.ModelHandlers[*bindingCredentialRecord] {
	return repository.ModelHandlers[*bindingCredentialRecord]{
		NewRecord: func() *bindingCredentialRecord {
			return &bindingCredentialRecord{}
		},
		GetID: func(record *bindingCredentialRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.BindingID)
		},
		SetID: func(record *bindingCredentialRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.BindingID = id.String()
		},
		GetIdentifier: func() string {
			return "binding_id"
		},
		GetIdentifierValue: func(record *bindingCredentialRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.BindingID)
		},
	}
}

// Broker identifiers are caller supplied and opaque; non-UUID ids map to
// uuid.Nil and the string identifier stays authoritative.
func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
