package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"delegatesigner/internal/common"
	"delegatesigner/internal/config"
	"delegatesigner/internal/delegate"
	"delegatesigner/internal/eip712"
	"delegatesigner/internal/hash"

	"go.uber.org/zap"
)

var errSignatureInvalid = errors.New("recovered address does not match the signer")

type domainJSON struct {
	Name              string      `json:"name"`
	Version           string      `json:"version"`
	ChainID           common.Uint `json:"chainId"`
	VerifyingContract string      `json:"verifyingContract"`
}

// runSign signs one attestation from the configuration and prints the
// domain, message, signature, verification result and API payload.
func runSign(cfg *config.Config, logger *zap.Logger, out io.Writer, now func() time.Time) error {
	for _, warning := range cfg.Warnings() {
		logger.Warn(warning)
	}
	logger.Warn("never use a real private key in scripts or .env files")

	params, err := cfg.Params(now)
	if err != nil {
		return err
	}

	signer, err := eip712.NewSigner(cfg.PrivateKey)
	if err != nil {
		return err
	}

	td := params.TypedData()
	if _, err := hash.CrossCheck(td); err != nil {
		return err
	}

	attestation, err := delegate.Sign(params, signer)
	if err != nil {
		return err
	}

	logger.Info("signed delegate signer attestation",
		zap.Stringer("chain", common.ChainID(cfg.ChainID)),
		zap.Stringer("digest", attestation.Digest),
		zap.Bool("valid", attestation.Valid),
	)

	walletTypedData, err := hash.BuildTypedData(td)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Wallet Address:", signer.Address().Hex())

	if err := printSection(out, "EIP-712 Domain", domainJSON{
		Name:              td.Domain.Name,
		Version:           td.Domain.Version,
		ChainID:           common.UintFrom(td.Domain.ChainID),
		VerifyingContract: td.Domain.VerifyingContract.Hex(),
	}); err != nil {
		return err
	}

	if err := printSection(out, "Message to Sign", params.WireMessage()); err != nil {
		return err
	}

	fmt.Fprintln(out, "\n=== Digest ===")
	fmt.Fprintln(out, attestation.Digest.Hex())

	fmt.Fprintln(out, "\n=== Signature ===")
	fmt.Fprintln(out, attestation.Signature.Hex())

	fmt.Fprintln(out, "\n=== Verification ===")
	fmt.Fprintln(out, "Expected Address:", attestation.UserAddress.Hex())
	fmt.Fprintln(out, "Recovered Address:", attestation.Recovered.Hex())
	fmt.Fprintln(out, "Signature Valid:", attestation.Valid)

	if err := printSection(out, "API Payload", attestation.Payload()); err != nil {
		return err
	}

	if err := printSection(out, "Wallet Typed Data (eth_signTypedData_v4)", walletTypedData); err != nil {
		return err
	}

	if !attestation.Valid {
		return errSignatureInvalid
	}
	return nil
}

func printSection(out io.Writer, title string, v interface{}) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", title, err)
	}
	fmt.Fprintf(out, "\n=== %s ===\n%s\n", title, body)
	return nil
}
