package runtimectx

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// charsets is the small subset of legacy 8-bit encodings mkvmerge's
// --sub-charset/--command-line-charset family of options historically
// accepts, mapped to golang.org/x/text/encoding/charmap's named
// Charmap values. This is the "iconv-style charset conversion table"
// spec.md §5/§9 describes as process-wide global state; UTF-8 is
// handled specially since charmap has no identity transcoder for it.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1":  charmap.ISO8859_1,
	"ISO-8859-15": charmap.ISO8859_15,
	"WINDOWS-1252": charmap.Windows1252,
	"KOI8-R":      charmap.KOI8R,
}

// CharsetTable decodes legacy 8-bit TrackInfo string fields (source
// filename, language) to UTF-8 for logging/identify output. Built once
// per RuntimeContext and reused for the life of the run (spec §5
// "constructed lazily... No locks are required because there is one
// thread").
type CharsetTable struct {
	name string
	dec  *encoding.Decoder // nil when name is UTF-8 (no-op passthrough)
}

// NewCharsetTable resolves name to a decoder. An empty name or
// "UTF-8" is the identity transform.
func NewCharsetTable(name string) (*CharsetTable, error) {
	if name == "" || name == "UTF-8" {
		return &CharsetTable{name: "UTF-8"}, nil
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("runtimectx: unsupported charset %q", name)
	}
	return &CharsetTable{name: name, dec: enc.NewDecoder()}, nil
}

// Decode converts s from the table's charset to UTF-8.
func (t *CharsetTable) Decode(s string) (string, error) {
	if t.dec == nil {
		return s, nil
	}
	return t.dec.String(s)
}

// Name reports the charset this table was built for.
func (t *CharsetTable) Name() string {
	return t.name
}
