// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/config"
)

// loadConfig builds the validated configuration from flags, environment and
// the optional config file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return config.Config{}, fmt.Errorf("couldn't configure flags: %w", err)
	}
	cfg, err := config.NewConfig(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("couldn't build config: %w", err)
	}
	return cfg, nil
}

// programFlag resolves the program identity without requiring the rest of the
// node configuration.
func programFlag(cmd *cobra.Command) (xcm.Address, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return xcm.EmptyAddress, err
	}
	raw := v.GetString(config.ProgramIDKey)
	if raw == "" {
		return xcm.EmptyAddress, fmt.Errorf("--%s is required", config.ProgramIDKey)
	}
	return xcm.ParseAddress(raw)
}

func hasherFlag(cmd *cobra.Command) (xcm.Hasher, error) {
	v, err := config.BuildViper(cmd.Flags())
	if err != nil {
		return nil, err
	}
	return xcm.HasherByName(v.GetString(config.HashAlgorithmKey))
}

func addressFlag(cmd *cobra.Command, name string) (xcm.Address, error) {
	raw, err := cmd.Flags().GetString(name)
	if err != nil {
		return xcm.EmptyAddress, err
	}
	a, err := xcm.ParseAddress(raw)
	if err != nil {
		return xcm.EmptyAddress, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return a, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err
}
