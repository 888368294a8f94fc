// Package note reads and writes the markdown notes the tool produces: YAML
// frontmatter (via gopkg.in/yaml.v3, preserving key order), notes built from an
// analyzed selection, backlinks, rewrite and folder summary notes, and cleanup
// of text copied out of PDFs.
//
// Functions here are pure string transformations; reading and writing files is
// the vault package's job.
package note
