// Package model abstracts the generative text service behind a minimal
// streaming interface. Provider adapters live in subpackages (anthropic,
// openai); a deterministic MockModel is provided for tests. Responses are
// delivered over channels: zero or more partial fragments followed by a final
// response, or an error on the error channel. A stream is consumed exactly
// once and is not restartable.
package model
