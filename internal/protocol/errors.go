package protocol

const (
	// Request decoding and validation.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrUnknownStrategy = "E_UNKNOWN_STRATEGY"
	ErrUnknownItem     = "E_UNKNOWN_ITEM"
	ErrInvalidRate     = "E_INVALID_RATE"

	// Stream limits.
	ErrRunTooLong = "E_RUN_TOO_LONG"

	// Server faults.
	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrBadRequest:      {},
	ErrUnknownStrategy: {},
	ErrUnknownItem:     {},
	ErrInvalidRate:     {},
	ErrRunTooLong:      {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
