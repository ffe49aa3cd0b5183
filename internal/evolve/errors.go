package evolve

import "errors"

// ErrInvalidModel is returned when model parameters are negative,
// non-finite, or otherwise fail validation at construction time.
var ErrInvalidModel = errors.New("evolve: invalid model parameters")

// ErrLabelMismatch is returned when a phylogeny's tip labels cannot be
// matched one-to-one against the caller's ordered tip labels.
var ErrLabelMismatch = errors.New("evolve: tip labels do not match between phylogeny and variant order")

// ErrInterrupted is returned by PhyloEvolver.Run when the caller's
// should_abort predicate fires. It is a non-fatal, cooperative status:
// every mutation applied before the check fired remains fully applied.
var ErrInterrupted = errors.New("evolve: interrupted by cancellation")
