package manager

import (
	"fmt"
	"time"

	"delegatesigner/internal/common"
	"delegatesigner/internal/delegate"
	"delegatesigner/internal/eip712"
	"delegatesigner/internal/hash"

	"github.com/google/uuid"
	"github.com/imkira/go-ttlmap"
	"go.uber.org/zap"
)

// Manager verifies submitted attestations, keeps the results for a limited
// time and fans them out to event subscribers.
type Manager struct {
	verifications *ttlmap.Map
	broadcaster   *common.Broadcaster
	ttl           time.Duration
	logger        *zap.Logger
	now           func() time.Time
}

func NewManager(ttl time.Duration, logger *zap.Logger) *Manager {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	logger = logger.Named("manager")

	options := &ttlmap.Options{
		InitialCapacity: initialCapacity,
		OnWillExpire: func(key string, item ttlmap.Item) {
			logger.Debug("verification expired", zap.String("id", key))
		},
		OnWillEvict: func(key string, item ttlmap.Item) {
			logger.Debug("verification evicted", zap.String("id", key))
		},
	}

	return &Manager{
		verifications: ttlmap.New(options),
		broadcaster:   common.NewBroadcaster(),
		ttl:           ttl,
		logger:        logger,
		now:           time.Now,
	}
}

// Verify recovers the signer of a submitted payload, stores the result and
// broadcasts it. A well formed signature from the wrong wallet is not an
// error, the result is stored with Valid set to false.
func (m *Manager) Verify(req common.VerifyRequest) (*common.Verification, error) {
	sig, err := eip712.ParseSignature(req.Signature)
	if err != nil {
		return nil, err
	}

	params := delegate.ParamsFromMessage(req.Message)
	attestation, err := delegate.Verify(params, sig, req.UserAddress)
	if err != nil {
		return nil, err
	}

	if _, err := hash.CrossCheck(params.TypedData()); err != nil {
		return nil, fmt.Errorf("failed to cross check digest: %w", err)
	}

	verification := &common.Verification{
		ID:               uuid.New(),
		Valid:            attestation.Valid,
		Digest:           attestation.Digest,
		RecoveredAddress: attestation.Recovered,
		UserAddress:      attestation.UserAddress,
		Message:          req.Message,
		Signature:        sig.Hex(),
		VerifiedAt:       m.now().UTC(),
	}

	if err := m.SetVerification(verification); err != nil {
		return nil, fmt.Errorf("failed to store verification: %w", err)
	}

	m.logger.Info("verified delegate signer attestation",
		zap.Stringer("id", verification.ID),
		zap.Bool("valid", verification.Valid),
		zap.Stringer("userAddress", verification.UserAddress),
		zap.Stringer("recoveredAddress", verification.RecoveredAddress),
		zap.String("brokerId", req.Message.BrokerID),
	)

	if err := m.HandleVerificationEvent(verification); err != nil {
		m.logger.Error("failed to broadcast verification", zap.Error(err))
	}

	return verification, nil
}

func (m *Manager) SetVerification(verification *common.Verification) error {
	return m.verifications.Set(verification.ID.String(), ttlmap.NewItem(verification, ttlmap.WithTTL(m.ttl)), nil)
}

func (m *Manager) GetVerification(id string) (*common.Verification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVerificationNotFound, id)
	}

	item, err := m.verifications.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrVerificationNotFound, id)
	}

	verification, ok := item.Value().(*common.Verification)
	if !ok || verification == nil {
		return nil, fmt.Errorf("invalid verification type for ID: %s", id)
	}

	return verification, nil
}

func (m *Manager) Subscribe() (uint64, <-chan []byte) {
	return m.broadcaster.Subscribe(subscriberBuffer)
}

func (m *Manager) Unsubscribe(id uint64) {
	m.broadcaster.Unsubscribe(id)
}

func (m *Manager) Broadcast(message []byte) int {
	return m.broadcaster.Publish(message)
}

// Close disconnects all subscribers and drops stored verifications.
func (m *Manager) Close() {
	m.broadcaster.Close()
	m.verifications.Drain()
}
