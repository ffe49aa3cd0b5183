package varchrom

import "errors"

// ErrOutOfRange is returned when a query or edit references a variant
// position past the current chromosome bounds.
var ErrOutOfRange = errors.New("varchrom: position out of range")

// ErrOverlapping is returned by Merge when the two variant chromosomes'
// mutation lists are not strictly before/after one another.
var ErrOverlapping = errors.New("varchrom: overlapping mutations in merge")
