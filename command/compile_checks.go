package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ProvisionMessage]   = (*ProvisionCommand)(nil)
	_ gocmd.Commander[DeprovisionMessage] = (*DeprovisionCommand)(nil)
	_ gocmd.Commander[BindMessage]        = (*BindCommand)(nil)
	_ gocmd.Commander[UnbindMessage]      = (*UnbindCommand)(nil)
)
