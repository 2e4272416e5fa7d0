// Package analysis produces the post-debate AnalysisResult from a completed
// transcript despite an unreliable upstream model. Strategies are tried in
// fixed priority order, each independently time-boxed: a tool-assisted
// multi-step model call first, then a single direct completion. The chain
// stops at the first tier returning a parseable result with a numeric
// approval score; if every tier fails the simulation still completes, just
// without an analysis payload.
package analysis
