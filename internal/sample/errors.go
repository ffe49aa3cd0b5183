package sample

import "errors"

// ErrNoWeight is returned when every candidate position in a sampling
// window has zero mutation rate, so no position can be chosen.
var ErrNoWeight = errors.New("sample: no candidate position has nonzero weight")
