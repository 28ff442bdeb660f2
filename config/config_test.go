// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/xcm"
)

var testProgram = "0x" + strings.Repeat("11", 32)

func buildConfig(t *testing.T, args ...string) (Config, error) {
	t.Helper()

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))

	v, err := BuildViper(fs)
	require.NoError(t, err)
	return NewConfig(v)
}

func TestDefaults(t *testing.T) {
	cfg, err := buildConfig(t,
		"--"+LocalChainIDKey, "1000",
		"--"+ProgramIDKey, testProgram,
	)
	require.NoError(t, err)

	require.Equal(t, uint64(1000), cfg.LocalChainID)
	require.Equal(t, defaultLogLevel, cfg.LogLevel)
	require.Equal(t, defaultDBPath, cfg.DBPath)
	require.Equal(t, defaultAPIPort, cfg.APIPort)
	require.Equal(t, defaultStatusCacheSize, cfg.StatusCacheSize)
	require.Equal(t, defaultTrustedCacheTTL, cfg.TrustedCacheTTL)
	require.Equal(t, xcm.SHA256, cfg.Hasher())

	program, err := xcm.ParseAddress(testProgram)
	require.NoError(t, err)
	require.Equal(t, program, cfg.Program())
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.json")
	contents := `{
		"local-chain-id": 5,
		"program-id": "` + testProgram + `",
		"hash-algorithm": "keccak256",
		"api-port": 9000,
		"trusted-cache-ttl": "1m",
		"in-memory": true
	}`
	require.NoError(t, os.WriteFile(file, []byte(contents), 0o600))

	t.Setenv("API_PORT", "9100")

	cfg, err := buildConfig(t,
		"--"+ConfigFileKey, file,
		"--"+LocalChainIDKey, "1000",
	)
	require.NoError(t, err)

	// flag over file
	require.Equal(t, uint64(1000), cfg.LocalChainID)
	// env over file
	require.Equal(t, uint16(9100), cfg.APIPort)
	// file over default
	require.Equal(t, time.Minute, cfg.TrustedCacheTTL)
	require.True(t, cfg.InMemory)
	require.Equal(t, xcm.Keccak256, cfg.Hasher())
}

func TestMissingConfigFile(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse([]string{"--" + ConfigFileKey, filepath.Join(t.TempDir(), "missing.json")}))

	_, err := BuildViper(fs)
	require.Error(t, err)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	_, err := buildConfig(t,
		"--"+ProgramIDKey, "0xnothex",
		"--"+HashAlgorithmKey, "md5",
		"--"+DBPathKey, "",
	)
	require.Error(t, err)
	require.ErrorContains(t, err, "LocalChainID")
	require.ErrorContains(t, err, "HashAlgorithm")
	require.ErrorContains(t, err, ProgramIDKey)
	require.ErrorIs(t, err, errMissingDBPath)
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = NewLogger("loud")
	require.Error(t, err)
}
