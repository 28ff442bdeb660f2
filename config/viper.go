// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func NewConfig(v *viper.Viper) (Config, error) {
	cfg, err := BuildConfig(v)
	if err != nil {
		return cfg, err
	}
	if err = cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("failed to validate configuration: %w", err)
	}
	return cfg, nil
}

// AddFlags registers every configuration key on fs.
func AddFlags(fs *pflag.FlagSet) {
	fs.String(ConfigFileKey, "", "Path to a JSON configuration file")
	fs.String(LogLevelKey, defaultLogLevel, "Log level (debug, info, warn, error)")
	fs.String(DBPathKey, defaultDBPath, "Database directory")
	fs.Bool(InMemoryKey, false, "Keep the database in memory")
	fs.Uint64(LocalChainIDKey, 0, "Chain ID transfers are executed on")
	fs.String(ProgramIDKey, "", "Program identity, base58 or 0x hex")
	fs.String(HashAlgorithmKey, defaultHashAlgorithm, "Message hash (sha256, keccak256)")
	fs.Uint16(APIPortKey, defaultAPIPort, "HTTP API port")
	fs.Int(DerivationCacheSizeKey, defaultDerivationCacheSize, "Derived address cache entries")
	fs.Int(StatusCacheSizeKey, defaultStatusCacheSize, "Processed status cache entries")
	fs.Duration(TrustedCacheTTLKey, defaultTrustedCacheTTL, "Trusted source lookup cache TTL")
	fs.Duration(RetryIntervalKey, defaultRetryInterval, "Initial retry interval for transient rejections")
	fs.Duration(RetryTimeoutKey, defaultRetryTimeout, "Give up retrying a transfer after this long")
}

// Build the viper instance. All config keys may be provided via flag,
// environment variable or an optional JSON config file.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	// Map flag names to env var names. Flags are capitalized, and hyphens are replaced with underscores.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	filename := v.GetString(ConfigFileKey)
	if filename == "" {
		return v, nil
	}
	v.SetConfigFile(filename)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	return v, nil
}

func SetDefaultConfigValues(v *viper.Viper) {
	v.SetDefault(LogLevelKey, defaultLogLevel)
	v.SetDefault(DBPathKey, defaultDBPath)
	v.SetDefault(HashAlgorithmKey, defaultHashAlgorithm)
	v.SetDefault(APIPortKey, defaultAPIPort)
	v.SetDefault(DerivationCacheSizeKey, defaultDerivationCacheSize)
	v.SetDefault(StatusCacheSizeKey, defaultStatusCacheSize)
	v.SetDefault(TrustedCacheTTLKey, defaultTrustedCacheTTL)
	v.SetDefault(RetryIntervalKey, defaultRetryInterval)
	v.SetDefault(RetryTimeoutKey, defaultRetryTimeout)
}

// BuildConfig constructs the config using Viper.
// The following precedence order is used. Each item takes precedence over the item below it:
//  1. Flags
//  2. Environment variables
//  3. Config file
//  4. Defaults
func BuildConfig(v *viper.Viper) (Config, error) {
	SetDefaultConfigValues(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal viper config: %w", err)
	}
	return cfg, nil
}
