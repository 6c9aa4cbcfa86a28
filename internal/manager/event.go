package manager

import (
	"bytes"
	"encoding/json"
	"fmt"

	"delegatesigner/internal/common"

	"go.uber.org/zap"
)

func (m *Manager) HandleVerificationEvent(verification *common.Verification) error {
	op := []byte(VERIFIED_EVENT + " ")
	verificationBytes, err := json.Marshal(verification)
	if err != nil {
		return err
	}

	delivered := m.Broadcast(append(op, verificationBytes...))
	m.logger.Debug("verification broadcast", zap.Stringer("id", verification.ID), zap.Int("subscribers", delivered))
	return nil
}

// HandleReceiveEvent processes a message sent by an event stream client.
func (m *Manager) HandleReceiveEvent(event []byte) (*common.Verification, error) {
	op, body, _ := bytes.Cut(bytes.TrimSpace(event), []byte(" "))
	m.logger.Debug("received event", zap.ByteString("op", op))

	switch string(op) {
	case VERIFY_EVENT:
		var req common.VerifyRequest
		if err := json.Unmarshal(body, &req); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		return m.Verify(req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, op)
	}
}

// RejectedEvent formats the reply for a client request that failed.
func RejectedEvent(err error) []byte {
	return []byte(REJECTED_EVENT + " " + err.Error())
}
