// Package trace is a one-line indirection over schuko/tracing so every
// package in this module gets a named tracer via a package-local
// tracer() helper selecting a dotted key. It is not the public
// logging surface — see sbrlog for that — this is purely the ambient
// "what is this code doing" instrumentation.
package trace

import "github.com/npillmayer/schuko/tracing"

// For selects the tracer for a dotted key, conventionally
// "subrandr.<package>".
func For(key string) tracing.Trace {
	return tracing.Select(key)
}
