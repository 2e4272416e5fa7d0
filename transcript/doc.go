// Package transcript accumulates completed debate turns and builds the
// bounded context payload each persona sees before speaking. Context building
// is deterministic: identical history, persona and phase always produce
// byte-identical output. Prior turn content is truncated to a fixed length to
// bound payload growth as the hearing gets longer; no resummarization occurs.
package transcript
