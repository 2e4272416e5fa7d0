// Package core defines the shared domain types for councilsim: simulation
// sessions, personas, debate turns, phases, analysis results, the session
// store contract, and the event sink used to surface lifecycle events to
// observers. It has no dependencies on other councilsim packages so every
// other package can import it freely.
package core
