// Package core contains the broker domain contracts, entities, and
// orchestration logic for service instance provisioning and binding.
// Lower-level adapters must depend on this package; core must not depend
// on storage-specific or transport-specific adapters.
package core
