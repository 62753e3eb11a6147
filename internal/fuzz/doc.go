// Package fuzztests houses Go fuzz harnesses for the YAML structure parser
// and the completion engine. The harnesses look for panics, hangs and broken
// tree invariants on arbitrary buffers.
package fuzztests
