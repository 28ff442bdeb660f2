// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"

	"github.com/luxfi/xcm"
)

const (
	defaultLogLevel            = "info"
	defaultDBPath              = "xcm-db"
	defaultHashAlgorithm       = xcm.HashSHA256
	defaultAPIPort             = uint16(8080)
	defaultDerivationCacheSize = 1024
	defaultStatusCacheSize     = 4096
	defaultTrustedCacheTTL     = 30 * time.Second
	defaultRetryInterval       = 100 * time.Millisecond
	defaultRetryTimeout        = 30 * time.Second
)

var errMissingDBPath = errors.New("db-path must be set unless in-memory is enabled")

// Config is the node configuration. Field tags name the viper keys.
type Config struct {
	LogLevel            string        `mapstructure:"log-level" validate:"oneof=debug info warn error"`
	DBPath              string        `mapstructure:"db-path"`
	InMemory            bool          `mapstructure:"in-memory"`
	LocalChainID        uint64        `mapstructure:"local-chain-id" validate:"required"`
	ProgramID           string        `mapstructure:"program-id" validate:"required"`
	HashAlgorithm       string        `mapstructure:"hash-algorithm" validate:"oneof=sha256 keccak256"`
	APIPort             uint16        `mapstructure:"api-port" validate:"required"`
	DerivationCacheSize int           `mapstructure:"derivation-cache-size" validate:"gte=0"`
	StatusCacheSize     int           `mapstructure:"status-cache-size" validate:"gte=0"`
	TrustedCacheTTL     time.Duration `mapstructure:"trusted-cache-ttl" validate:"gte=0"`
	RetryInterval       time.Duration `mapstructure:"retry-interval" validate:"gt=0"`
	RetryTimeout        time.Duration `mapstructure:"retry-timeout" validate:"gt=0"`

	// Initialized by Validate
	programID xcm.Address
	hasher    xcm.Hasher
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				result = multierror.Append(result, fmt.Errorf("invalid %s: failed %q check", fieldErr.Field(), fieldErr.Tag()))
			}
		} else {
			result = multierror.Append(result, err)
		}
	}

	if !c.InMemory && c.DBPath == "" {
		result = multierror.Append(result, errMissingDBPath)
	}

	if c.ProgramID != "" {
		programID, err := xcm.ParseAddress(c.ProgramID)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid %s: %w", ProgramIDKey, err))
		} else {
			c.programID = programID
		}
	}

	hasher, err := xcm.HasherByName(c.HashAlgorithm)
	if err != nil {
		result = multierror.Append(result, err)
	} else {
		c.hasher = hasher
	}

	return result.ErrorOrNil()
}

// Program returns the parsed program identity. Only valid after Validate.
func (c *Config) Program() xcm.Address {
	return c.programID
}

// Hasher returns the configured message hasher. Only valid after Validate.
func (c *Config) Hasher() xcm.Hasher {
	if c.hasher == nil {
		return xcm.SHA256
	}
	return c.hasher
}
