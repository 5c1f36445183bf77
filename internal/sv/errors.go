package sv

import "errors"

var (
	// ErrLinkOutOfRange is returned when a cursor or index falls outside a chain.
	ErrLinkOutOfRange = errors.New("link index out of range")
	// ErrChainBroken is returned for links that do not join end to end.
	ErrChainBroken = errors.New("chain links are not continuous")
	// ErrUnknownSV is returned when a sample references an SV it does not define.
	ErrUnknownSV = errors.New("unknown SV")
)
