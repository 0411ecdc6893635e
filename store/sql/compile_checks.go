package sqlstore

import "github.com/goliatone/go-servicebroker/core"

var (
	_ core.InstanceStore          = (*InstanceStore)(nil)
	_ core.BindingStore           = (*BindingStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
