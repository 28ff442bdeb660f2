// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/xcm"
)

type derivationOutput struct {
	Program xcm.Address `json:"program"`
	Address xcm.Address `json:"address"`
	Hex     string      `json:"hex"`
	Bump    uint8       `json:"bump"`
}

func newDeriveCmd() *cobra.Command {
	deriveCmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive program addresses",
	}

	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Derive the client account of an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := programFlag(cmd)
			if err != nil {
				return err
			}
			owner, err := addressFlag(cmd, "owner")
			if err != nil {
				return err
			}
			address, bump, err := xcm.FindProgramAddress(xcm.ClientAccountSeeds(owner), program)
			if err != nil {
				return err
			}
			return printJSON(cmd, derivationOutput{Program: program, Address: address, Hex: address.Hex(), Bump: bump})
		},
	}
	clientCmd.Flags().String("owner", "", "Owner address")
	_ = clientCmd.MarkFlagRequired("owner")

	trustedCmd := &cobra.Command{
		Use:   "trusted",
		Short: "Derive the trusted record of a client for a source chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			program, err := programFlag(cmd)
			if err != nil {
				return err
			}
			client, err := addressFlag(cmd, "client")
			if err != nil {
				return err
			}
			chainID, err := cmd.Flags().GetUint64("chain")
			if err != nil {
				return err
			}
			address, bump, err := xcm.FindProgramAddress(xcm.TrustedAddressSeeds(client, chainID), program)
			if err != nil {
				return err
			}
			return printJSON(cmd, derivationOutput{Program: program, Address: address, Hex: address.Hex(), Bump: bump})
		},
	}
	trustedCmd.Flags().String("client", "", "Client account address")
	trustedCmd.Flags().Uint64("chain", 0, "Source chain ID")
	_ = trustedCmd.MarkFlagRequired("client")
	_ = trustedCmd.MarkFlagRequired("chain")

	deriveCmd.AddCommand(clientCmd, trustedCmd)
	return deriveCmd
}
