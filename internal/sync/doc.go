// Package sync owns the canonical todo-list collection and reconciles
// it with a persistence backend.
//
// # Overview
//
// The Store mediates between user intents and the storage gateway. An
// intent is applied optimistically to the visible projection first,
// then dispatched as a durable write; the canonical collection is
// corrected by the backend's subscription push, or directly by the
// Store when the backend has no subscription channel.
//
//	User intent (create list, add item, reorder)
//	     │
//	     ▼
//	Overlay ── immediate visual update (pending lists, item projection)
//	     │
//	     ▼
//	Store ──── durable write via store.Store
//	     │
//	     ▼
//	Gateway ── confirms, or pushes authoritative state back
//	     │
//	     ▼
//	Store ──── replaces canonical collection, Overlay retires the
//	           matching pending entry
//
// # Concurrency
//
// The canonical collection is mutated only by the Store; the Overlay
// keeps its own pending/projection state and never writes canonical
// data. Subscription payloads are applied in arrival order. At most
// one durable update per list is in flight at a time; later writes for
// the same list wait for the prior one to settle, so full-document
// replaces cannot persist out of order.
package sync
