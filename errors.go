package kdpcheck

import (
	"github.com/hanpama/kdpcheck/internal/opc"
	"github.com/hanpama/kdpcheck/internal/wml"
)

// Sentinel errors, matchable with errors.Is. A missing input file surfaces
// as fs.ErrNotExist from the underlying open.
var (
	// ErrNotAPackage reports an input that is not a ZIP document package.
	ErrNotAPackage = opc.ErrNotAPackage

	// ErrPartMissing reports a package without the expected document part.
	ErrPartMissing = opc.ErrPartMissing

	// ErrMalformed reports document XML that could not be parsed.
	ErrMalformed = wml.ErrMalformed
)
