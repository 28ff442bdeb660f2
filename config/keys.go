// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	// Command line option keys
	ConfigFileKey = "config-file"

	// Environment variable keys
	ConfigFileEnvKey = "CONFIG_FILE"

	// Top-level configuration keys
	LogLevelKey            = "log-level"
	DBPathKey              = "db-path"
	InMemoryKey            = "in-memory"
	LocalChainIDKey        = "local-chain-id"
	ProgramIDKey           = "program-id"
	HashAlgorithmKey       = "hash-algorithm"
	APIPortKey             = "api-port"
	DerivationCacheSizeKey = "derivation-cache-size"
	StatusCacheSizeKey     = "status-cache-size"
	TrustedCacheTTLKey     = "trusted-cache-ttl"
	RetryIntervalKey       = "retry-interval"
	RetryTimeoutKey        = "retry-timeout"
)
