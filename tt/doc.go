/*
Package tt decodes the binary structure of TrueType fonts.
Intended audience for this package are:

▪︎ text shapers, which need character-to-glyph mappings and metrics

▪︎ glyph rasterizers, which need access to vector glyph outlines

▪︎ font inspection tools, which need structured access to the internal
table structure of a font file

Package `tt` reads a font's bytes and exposes its tables to the client;
it will not rasterize outlines, execute hinting instructions, or shape
text. From this point of view, `tt` is a low-level package. Higher-level
query functions are homed in a sister package.

TrueType is a dense, offset-relative binary format with multiple
sub-format variants and cross-table dependencies: the glyph count from
table 'maxp' bounds indices into 'loca', and the width of 'loca' entries
depends on a flag in 'head'. This package abstracts away some of these
implementation details:

▪︎ Format versions: the character map ('cmap') and the glyph index table
('loca') come in a variety of formats. Clients will not see the concrete
format of the underlying table.

▪︎ Word size: offsets may either be 2-byte or 4-byte values. Package `tt`
hides offset-related details.

▪︎ Broken fonts: a malformed font must never cause an out-of-bounds read
or unbounded recursion. Decoding failures surface as structured errors
carrying the table tag, glyph index and byte offset involved; they never
panic the process.

The package never mutates the font's bytes, and decoded tables are
immutable views. Independent lookups against the same Font may run
concurrently; per-table decoding is done at most once per font instance.
*/
package tt

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'font.verotype'
func tracer() tracing.Trace {
	return tracing.Select("font.verotype")
}
