// Package memory provides map-backed implementations of the store
// interfaces, guarded by mutexes and handing out defensive copies.
//
// These are test doubles and local-dev conveniences, not a production
// design: single-row last-writer-wins is all the serialization they offer,
// and WithTx is a no-op because there is nothing transactional to bind to.
// The postgres package is the real adapter.
package memory
