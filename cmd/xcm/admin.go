// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/payload"
)

type clientOutput struct {
	Client      xcm.Address `json:"client"`
	Owner       xcm.Address `json:"owner"`
	RelayOwner  xcm.Address `json:"relay-owner"`
	PayloadKind string      `json:"payload-kind"`
	Bump        uint8       `json:"bump"`
}

type trustOutput struct {
	Client  xcm.Address `json:"client"`
	ChainID uint64      `json:"chain-id"`
	Record  xcm.Address `json:"record,omitempty"`
	Source  xcm.Address `json:"source"`
}

func newClientCmd() *cobra.Command {
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Manage client accounts",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the client account of an owner",
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := addressFlag(cmd, "owner")
			if err != nil {
				return err
			}
			relayOwner, err := addressFlag(cmd, "relay-owner")
			if err != nil {
				return err
			}
			rawKind, _ := cmd.Flags().GetString("kind")
			kind, err := payload.ParseKind(rawKind)
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			client, err := n.registry.CreateClient(cmd.Context(), owner, relayOwner, kind)
			if err != nil {
				return err
			}
			account, err := n.registry.Client(cmd.Context(), client)
			if err != nil {
				return err
			}
			return printJSON(cmd, clientOutput{
				Client:      client,
				Owner:       account.Owner,
				RelayOwner:  account.RelayOwner,
				PayloadKind: payload.Kind(account.PayloadKind).String(),
				Bump:        account.Bump,
			})
		},
	}
	createCmd.Flags().String("owner", "", "Owner address")
	createCmd.Flags().String("relay-owner", "", "Address allowed to submit transfers")
	createCmd.Flags().String("kind", payload.KindOwnership.String(), "Payload kind (generic, ownership, token)")
	_ = createCmd.MarkFlagRequired("owner")
	_ = createCmd.MarkFlagRequired("relay-owner")

	relayOwnerCmd := &cobra.Command{
		Use:   "set-relay-owner",
		Short: "Change the address allowed to submit transfers for a client",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			client, err := addressFlag(cmd, "client")
			if err != nil {
				return err
			}
			relayOwner, err := addressFlag(cmd, "relay-owner")
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			return n.registry.SetRelayOwner(cmd.Context(), authority, client, relayOwner)
		},
	}
	relayOwnerCmd.Flags().String("authority", "", "Client owner authorizing the change")
	relayOwnerCmd.Flags().String("client", "", "Client account address")
	relayOwnerCmd.Flags().String("relay-owner", "", "New relay owner")
	_ = relayOwnerCmd.MarkFlagRequired("authority")
	_ = relayOwnerCmd.MarkFlagRequired("client")
	_ = relayOwnerCmd.MarkFlagRequired("relay-owner")

	clientCmd.AddCommand(createCmd, relayOwnerCmd)
	return clientCmd
}

func newTrustCmd() *cobra.Command {
	trustCmd := &cobra.Command{
		Use:   "trust",
		Short: "Manage trusted sources of a client",
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Register or replace the trusted source for a chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, client, chainID, err := trustArgs(cmd)
			if err != nil {
				return err
			}
			source, err := addressFlag(cmd, "source")
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			record, err := n.registry.SetTrustedSource(cmd.Context(), authority, client, chainID, source)
			if err != nil {
				return err
			}
			return printJSON(cmd, trustOutput{Client: client, ChainID: chainID, Record: record, Source: source})
		},
	}
	addTrustFlags(setCmd)
	setCmd.Flags().String("source", "", "Trusted source address on the chain")
	_ = setCmd.MarkFlagRequired("source")

	revokeCmd := &cobra.Command{
		Use:   "revoke",
		Short: "Remove the trusted source for a chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, client, chainID, err := trustArgs(cmd)
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			return n.registry.RevokeTrustedSource(cmd.Context(), authority, client, chainID)
		},
	}
	addTrustFlags(revokeCmd)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the trusted source for a chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := addressFlag(cmd, "client")
			if err != nil {
				return err
			}
			chainID, _ := cmd.Flags().GetUint64("chain")

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			source, err := n.registry.Lookup(cmd.Context(), client, chainID)
			if err != nil {
				return err
			}
			return printJSON(cmd, trustOutput{Client: client, ChainID: chainID, Source: source})
		},
	}
	showCmd.Flags().String("client", "", "Client account address")
	showCmd.Flags().Uint64("chain", 0, "Source chain ID")
	_ = showCmd.MarkFlagRequired("client")
	_ = showCmd.MarkFlagRequired("chain")

	trustCmd.AddCommand(setCmd, revokeCmd, showCmd)
	return trustCmd
}

func addTrustFlags(cmd *cobra.Command) {
	cmd.Flags().String("authority", "", "Client owner authorizing the change")
	cmd.Flags().String("client", "", "Client account address")
	cmd.Flags().Uint64("chain", 0, "Source chain ID")
	_ = cmd.MarkFlagRequired("authority")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("chain")
}

func trustArgs(cmd *cobra.Command) (authority, client xcm.Address, chainID uint64, err error) {
	if authority, err = addressFlag(cmd, "authority"); err != nil {
		return
	}
	if client, err = addressFlag(cmd, "client"); err != nil {
		return
	}
	chainID, err = cmd.Flags().GetUint64("chain")
	return
}
