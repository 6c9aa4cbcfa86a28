package common

import (
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

/*
JSON shape:

	{
		delegateContract: string
		brokerId: string
		chainId: number
		timestamp: number
		registrationNonce: number
		txHash: string
	}
*/
type DelegateSignerMessage struct {
	DelegateContract  ethcommon.Address `json:"delegateContract"`
	BrokerID          string            `json:"brokerId"`
	ChainID           Uint              `json:"chainId"`
	Timestamp         uint64            `json:"timestamp"`
	RegistrationNonce Uint              `json:"registrationNonce"`
	TxHash            ethcommon.Hash    `json:"txHash"`
}

/*
JSON shape:

	{
		message: DelegateSignerMessage
		signature: string
		userAddress: string
	}
*/
type DelegateSignerPayload struct {
	Message     DelegateSignerMessage `json:"message"`
	Signature   string                `json:"signature"`
	UserAddress ethcommon.Address     `json:"userAddress"`
}

// VerifyRequest has the same shape as the payload submitted to Orderly.
type VerifyRequest = DelegateSignerPayload

/*
JSON shape:

	{
		id: string
		valid: boolean
		digest: string
		recoveredAddress: string
		userAddress: string
		message: DelegateSignerMessage
		signature: string
		verifiedAt: string
	}
*/
type Verification struct {
	ID               uuid.UUID             `json:"id"`
	Valid            bool                  `json:"valid"`
	Digest           ethcommon.Hash        `json:"digest"`
	RecoveredAddress ethcommon.Address     `json:"recoveredAddress"`
	UserAddress      ethcommon.Address     `json:"userAddress"`
	Message          DelegateSignerMessage `json:"message"`
	Signature        string                `json:"signature"`
	VerifiedAt       time.Time             `json:"verifiedAt"`
}

/*
JSON shape:

	{
		digest: string
		domainSeparator: string
		structHash: string
		encodedType: string
	}
*/
type DigestResponse struct {
	Digest          ethcommon.Hash `json:"digest"`
	DomainSeparator ethcommon.Hash `json:"domainSeparator"`
	StructHash      ethcommon.Hash `json:"structHash"`
	EncodedType     string         `json:"encodedType"`
}

// TypedDataParams are the query parameters of the typed data endpoint.
// Timestamp is in milliseconds, zero means now.
type TypedDataParams struct {
	ChainID           uint64 `schema:"chainId,required"`
	BrokerID          string `schema:"brokerId,required"`
	DelegateContract  string `schema:"delegateContract,required"`
	TxHash            string `schema:"txHash,required"`
	RegistrationNonce string `schema:"registrationNonce"`
	Timestamp         uint64 `schema:"timestamp"`
}
