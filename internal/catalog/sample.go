package catalog

import (
	"bytes"
	_ "embed"
)

//go:embed sample.json
var sampleJSON []byte

// Sample returns the built-in demo catalog served when no database is configured.
func Sample() (Catalog, error) {
	return Load(bytes.NewReader(sampleJSON))
}
