// Package session provides the in-memory SessionStore implementation used by
// councilsim. Sessions live for the process lifetime and are never deleted;
// all mutation goes through per-session locks so concurrent writers cannot
// interleave or lose updates.
package session
