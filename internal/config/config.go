// Package config reads the service configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"delegatesigner/internal/common"
	"delegatesigner/internal/delegate"
	"delegatesigner/internal/hash"
	"delegatesigner/internal/logger"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Mode string

const (
	ModeSign  Mode = "sign"
	ModeServe Mode = "serve"
)

const (
	configDirPathEnv     = "DELEGATE_SIGNER_CONFIG_DIR_PATH"
	defaultConfigDirPath = "."
	placeholderBrokerID  = "your_broker_id"
)

type Config struct {
	Mode Mode `env:"MODE" env-default:"sign" env-description:"sign prints one attestation, serve runs the verification service"`

	ChainID           uint64 `env:"CHAIN_ID" env-default:"80094"`
	BrokerID          string `env:"BROKER_ID" env-default:"your_broker_id"`
	DelegateContract  string `env:"DELEGATE_CONTRACT" env-default:"0x0000000000000000000000000000000000000000"`
	TxHash            string `env:"TX_HASH" env-default:"0x0000000000000000000000000000000000000000000000000000000000000000"`
	RegistrationNonce string `env:"REGISTRATION_NONCE" env-default:"0"`
	TimestampMs       uint64 `env:"TIMESTAMP_MS" env-default:"0" env-description:"milliseconds since epoch, 0 means now"`
	PrivateKey        string `env:"PRIVATE_KEY"`

	APIPort         int           `env:"API_PORT" env-default:"8080"`
	WSPort          int           `env:"WS_PORT" env-default:"8081"`
	VerificationTTL time.Duration `env:"VERIFICATION_TTL" env-default:"15m"`

	Log logger.Config

	// DotEnvPath is the .env file that was loaded, empty if none was found.
	DotEnvPath string `env:"-"`
}

// Load reads the .env file from DELEGATE_SIGNER_CONFIG_DIR_PATH (or the
// working directory) when present, then the environment. Variables already
// set in the environment take precedence over the file.
func Load() (*Config, error) {
	configDirPath := os.Getenv(configDirPathEnv)
	if configDirPath == "" {
		configDirPath = defaultConfigDirPath
	}
	return LoadFrom(filepath.Join(configDirPath, ".env"))
}

// LoadFrom is Load with an explicit .env path.
func LoadFrom(dotEnvPath string) (*Config, error) {
	loaded := ""
	if err := godotenv.Load(dotEnvPath); err == nil {
		loaded = dotEnvPath
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", dotEnvPath, err)
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	cfg.DotEnvPath = loaded

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeSign, ModeServe:
	default:
		return fmt.Errorf("invalid MODE %q, expected %q or %q", c.Mode, ModeSign, ModeServe)
	}

	if c.Mode == ModeServe {
		if c.APIPort <= 0 || c.WSPort <= 0 {
			return fmt.Errorf("API_PORT and WS_PORT must be positive")
		}
		if c.APIPort == c.WSPort {
			return fmt.Errorf("API_PORT and WS_PORT must differ, both are %d", c.APIPort)
		}
		if c.VerificationTTL <= 0 {
			return fmt.Errorf("VERIFICATION_TTL must be positive")
		}
	}

	if c.Mode == ModeSign && strings.TrimSpace(c.PrivateKey) == "" {
		return fmt.Errorf("PRIVATE_KEY is required in %s mode", ModeSign)
	}
	return nil
}

// Params converts the attestation settings. now supplies the timestamp when
// TIMESTAMP_MS is zero.
func (c *Config) Params(now func() time.Time) (delegate.Params, error) {
	if c.ChainID == 0 {
		return delegate.Params{}, fmt.Errorf("CHAIN_ID must be positive")
	}

	if !ethcommon.IsHexAddress(c.DelegateContract) {
		return delegate.Params{}, fmt.Errorf("DELEGATE_CONTRACT %q is not a hex address", c.DelegateContract)
	}

	txHash, err := hash.HexToBytes32Strict(c.TxHash)
	if err != nil {
		return delegate.Params{}, fmt.Errorf("TX_HASH: %w", err)
	}

	nonce, err := common.ParseUint(c.RegistrationNonce)
	if err != nil {
		return delegate.Params{}, fmt.Errorf("REGISTRATION_NONCE: %w", err)
	}

	timestamp := c.TimestampMs
	if timestamp == 0 {
		timestamp = uint64(now().UnixMilli())
	}

	return delegate.Params{
		ChainID:           uint256.NewInt(c.ChainID),
		BrokerID:          c.BrokerID,
		DelegateContract:  ethcommon.HexToAddress(c.DelegateContract),
		Timestamp:         timestamp,
		RegistrationNonce: nonce,
		TxHash:            txHash,
	}, nil
}

// Warnings lists settings that still hold their placeholder values.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.BrokerID == placeholderBrokerID || c.BrokerID == "" {
		warnings = append(warnings, "BROKER_ID is not set")
	}
	if ethcommon.HexToAddress(c.DelegateContract) == (ethcommon.Address{}) {
		warnings = append(warnings, "DELEGATE_CONTRACT is the zero address")
	}
	if ethcommon.HexToHash(c.TxHash) == (ethcommon.Hash{}) {
		warnings = append(warnings, "TX_HASH is the zero hash")
	}
	if !common.ChainID(c.ChainID).Known() {
		warnings = append(warnings, fmt.Sprintf("CHAIN_ID %d is not a known network", c.ChainID))
	}
	return warnings
}
