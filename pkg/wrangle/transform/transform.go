// Package transform holds the per-file mappings that carry a transcript
// corpus from raw line-delimited records to embedding trainer input. Every
// transform validates its configuration at construction and rejects bad
// settings before any file is opened.
package transform

import (
	"context"
)

// Stats reports what one application of a transform did.
type Stats struct {
	Records int // records or lines written to the output
	Skipped int // malformed input records dropped along the way
}

// Transform maps one input file to one output file. Implementations are
// deterministic: applying the same transform to the same input always
// produces the same output, and an existing output file is overwritten.
type Transform interface {
	// Name identifies the transform in logs and reports.
	Name() string

	// InputExt is the file extension the transform expects to read.
	InputExt() string

	// OutputExt is the file extension the transform writes.
	OutputExt() string

	// Apply reads inputPath and writes outputPath. A non-nil error means
	// the output file is not usable; callers decide whether to continue
	// with other files.
	Apply(ctx context.Context, inputPath, outputPath string) (Stats, error)
}

// DefaultMarker is the end-of-line marker used across the pipeline when no
// other marker is configured. It is an invented token so it can never
// collide with a real word in the corpus.
const DefaultMarker = "eopc"
