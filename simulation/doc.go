// Package simulation coordinates full hearing runs. The Manager creates
// sessions, enforces at most one active background run per session, and
// drives each run through persona generation, the five-phase debate and
// post-debate analysis, broadcasting events to observers along the way.
package simulation
