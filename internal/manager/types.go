package manager

import "errors"

const (
	// Service -> Client

	// Verification broadcast event: VERIFIED <ACTUAL_JSON_OF_VERIFICATION>
	VERIFIED_EVENT = "VERIFIED"
	// Rejected client request, sent only to the requesting client: REJECTED <ERROR_MESSAGE>
	REJECTED_EVENT = "REJECTED"

	// Client -> Service

	// Verify request event: VERIFY <ACTUAL_JSON_OF_PAYLOAD>
	VERIFY_EVENT = "VERIFY"
)

var (
	ErrVerificationNotFound = errors.New("verification not found")
	ErrUnknownEvent         = errors.New("unknown event type")
	ErrMalformedEvent       = errors.New("malformed event")
)
