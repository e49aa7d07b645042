package traderr

// Kind identifies one class of failure from an external platform call.
//
// The taxonomy is closed: every raw error crossing the boundary of a
// platform service is mapped to exactly one Kind before it surfaces.
type Kind int

const (
	// KindInternal is the generic fallback for failures that did not
	// originate from a platform SDK call.
	KindInternal Kind = iota

	// KindConnection indicates a network or connectivity failure.
	KindConnection

	// KindAuthentication indicates rejected credentials or signatures.
	KindAuthentication

	// KindRateLimited indicates the platform throttled the call.
	KindRateLimited

	// KindValidation indicates the request payload was rejected as invalid.
	KindValidation

	// KindSymbolNotFound indicates an unknown or unavailable instrument.
	KindSymbolNotFound

	// KindOrderNotFound indicates the referenced order does not exist.
	KindOrderNotFound

	// KindPositionNotFound indicates the referenced position does not exist.
	KindPositionNotFound

	// KindInsufficientFunds indicates the account balance cannot cover
	// the requested trade.
	KindInsufficientFunds

	// KindExecutionFailed indicates the platform accepted but could not
	// execute the trade.
	KindExecutionFailed

	// KindNotInitialized indicates a call against a service whose
	// connection has not been established.
	KindNotInitialized

	// KindUnknownAPI is the fallback for unmapped SDK-origin failures.
	KindUnknownAPI
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindInternal:
		return "internal"
	case KindConnection:
		return "connection"
	case KindAuthentication:
		return "authentication"
	case KindRateLimited:
		return "rate_limited"
	case KindValidation:
		return "validation"
	case KindSymbolNotFound:
		return "symbol_not_found"
	case KindOrderNotFound:
		return "order_not_found"
	case KindPositionNotFound:
		return "position_not_found"
	case KindInsufficientFunds:
		return "insufficient_funds"
	case KindExecutionFailed:
		return "execution_failed"
	case KindNotInitialized:
		return "not_initialized"
	case KindUnknownAPI:
		return "unknown_api"
	default:
		return "internal"
	}
}

// Transient returns the default set of kinds worth retrying: failures
// that tend to resolve on their own within a backoff window.
func Transient() []Kind {
	return []Kind{KindConnection, KindRateLimited}
}
