/*
Package query provides higher-level queries over parsed fonts: font-wide
and per-glyph metrics, name table lookups and codepoint/glyph mappings.

It sits on top of package tt and converts raw table values into the
types client code usually wants to work with. Functions in this package
favor convenience over strictness: missing or undecodable tables yield
zero values instead of errors wherever that is reasonable.
*/
package query

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'font.verotype'.
func tracer() tracing.Trace {
	return tracing.Select("font.verotype")
}
