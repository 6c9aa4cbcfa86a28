package manager

import (
	"time"
)

const (
	// DefaultVerificationTTL is how long verification results stay retrievable
	DefaultVerificationTTL = time.Minute * 15

	// per-subscriber event buffer, events to a full subscriber are dropped
	subscriberBuffer = 32

	initialCapacity = 32
)
