// Package content embeds the default exercise catalog, prompts, expected
// queries and the atletas dataset.
package content

import "embed"

//go:embed catalog.yaml prompts results data
var FS embed.FS

// Manifest is the catalog manifest path inside FS.
const Manifest = "catalog.yaml"
