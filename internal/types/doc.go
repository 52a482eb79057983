// doc.go — Package documentation for the recorder's foundational types.

// Package types provides the foundational, zero-dependency types for dakka.
//
// This package contains the data model shared by every other package:
//   - Wire types delivered by the browser extension (Record, InteractionEvent)
//   - Selector candidates supplied by the DOM observer (Selector)
//   - Timeline entries (Entry: single event, coalesced group, or EventBlock)
//   - Closed enumerations (EventType, AssertionType, Framework)
//
// Design Principle: Zero Dependencies
// This package imports only the Go standard library. It is safe to import from
// any other package without creating circular dependencies.
//
// Architecture Layer: Foundation
//
//	Layer 1: types (zero deps) ← YOU ARE HERE
//	Layer 2: selector, timeline
//	Layer 3: recorder, export, store, ingest
//	Layer 4: Wiring (server, cmd/dakka)
package types
