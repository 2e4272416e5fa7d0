// Package engine drives the five-phase hearing state machine. A single
// Engine instance owns one run: it selects speakers per phase, asks the
// transcript for each speaker's bounded context, streams the generated turn
// through a TurnGenerator, appends completed turns to the session store and
// emits lifecycle events to the injected sink. Turns within a run execute
// strictly sequentially; runs for different sessions are independent.
package engine
