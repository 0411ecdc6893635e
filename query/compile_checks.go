package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-servicebroker/core"
)

var (
	_ gocmd.Querier[GetServiceInstanceMessage, core.ServiceInstance] = (*GetServiceInstanceQuery)(nil)
	_ gocmd.Querier[GetBindingMessage, core.Binding]                 = (*GetBindingQuery)(nil)
	_ gocmd.Querier[GetCredentialMessage, core.StoredCredential]     = (*GetCredentialQuery)(nil)
)
