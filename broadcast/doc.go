// Package broadcast fans simulation events out to observers. A Hub tracks
// zero or more observer connections per session id and delivers each typed
// event, serialized as {"type": ..., "payload": ...}, to every observer
// currently registered for that session. Delivery is best-effort and
// at-most-once: a failed send removes that observer without affecting the
// others or the run. Observers joining mid-run only see events emitted after
// they join; there is no replay.
package broadcast
