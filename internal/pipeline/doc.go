// Package pipeline implements the Markdown cleanup stages applied to raw
// converter output.
//
// The package is organized as independent rewrite rules composed by Clean:
//   - block wrapper and empty span removal (blocks.go)
//   - header artifact fixes (headers.go)
//   - internal link and package-root image path fixes (links.go)
//   - whitespace normalization (whitespace.go)
//   - the closing artifact sweep (sweep.go)
//
// Image references are canonicalized by CanonicalizeImages (images.go), which
// Clean runs as an optional stage between link fixing and whitespace
// normalization. Audit (audit.go) parses the result with goldmark to report
// what structure survived.
//
// Rules never log and never touch the filesystem. Moving image files and
// choosing what to log belong to the caller.
package pipeline
