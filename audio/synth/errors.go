package synth

import "errors"

// ErrInvalidParameter indicates a zero or negative synthesis parameter.
// Synthesis parameters are fixed at startup, so this is always a
// programming error and construction fails fast.
var ErrInvalidParameter = errors.New("invalid synthesis parameter")
