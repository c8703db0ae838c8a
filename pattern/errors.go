package pattern

import "errors"

// ErrUnknownTier is returned when compiling for a tier outside exact, mixed and fuzzy.
var ErrUnknownTier = errors.New("unknown search tier")
