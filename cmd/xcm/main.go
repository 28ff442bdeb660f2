// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/xcm/config"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xcm",
		Short: "Cross-chain message relay core",
		Long: `xcm verifies and executes cross-chain transfers: it derives program
addresses, encodes and hashes message envelopes, administers trusted sources
runs inbound transfers through the verification state machine and initiates
outbound messages.`,
		Version:       fmt.Sprintf("%s (built %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newDeriveCmd(),
		newEncodeCmd(),
		newHashCmd(),
		newDecodeCmd(),
		newClientCmd(),
		newTrustCmd(),
		newTransferCmd(),
		newStatusCmd(),
		newOutboundCmd(),
		newServeCmd(),
	)
	return rootCmd
}
