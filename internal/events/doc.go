// Package events matches changed paths against subscribed patterns and
// carries the payloads delivered to handlers.
//
// A pattern is a dot-separated path in which the token {uid} stands for one
// path segment drawn from [A-Za-z0-9_-]. Patterns anchor at the start of the
// observed path: a pattern that consumes the whole path is a full match and
// names the handler to invoke; a pattern that consumes only a leading prefix
// leaves an "extra" remainder, which the engine answers by re-processing the
// consumed prefix as a unit instead of invoking the handler.
//
// The registry is pure: Match reports what matched and what was captured,
// and the caller decides what to do with it. Handlers subscribe once at
// startup and live for the process.
package events
