// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/relay"
	"github.com/luxfi/xcm/utils"
)

type receiptOutput struct {
	Hash            common.Hash `json:"hash"`
	State           string      `json:"state"`
	Kind            string      `json:"kind"`
	Payer           xcm.Address `json:"payer"`
	ClientAccount   xcm.Address `json:"client-account"`
	TransferAccount xcm.Address `json:"transfer-account"`
}

func newTransferCmd() *cobra.Command {
	transferCmd := &cobra.Command{
		Use:   "transfer",
		Short: "Execute an inbound transfer against the local ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			payer, err := addressFlag(cmd, "payer")
			if err != nil {
				return err
			}
			relayOwner, err := addressFlag(cmd, "relay-owner")
			if err != nil {
				return err
			}
			payloadBytes, err := payloadFromFlags(cmd)
			if err != nil {
				return err
			}
			envelope, err := envelopeFromFlags(cmd, payloadBytes)
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			req, err := n.builder.Request(&relay.Observed{
				SourceChainID:      envelope.SourceChainID,
				SourceAddress:      envelope.SourceAddress,
				DestinationChainID: envelope.DestinationChainID,
				DestinationAddress: envelope.DestinationAddress,
				TransactionID:      envelope.TransactionID,
				Payload:            envelope.Payload,
			}, payer, relayOwner)
			if err != nil {
				return err
			}
			if rawHash, _ := cmd.Flags().GetString("incoming-hash"); rawHash != "" {
				if req.IncomingHash, err = utils.HexOrCB58ToID(rawHash); err != nil {
					return fmt.Errorf("invalid --incoming-hash: %w", err)
				}
			}

			receipt, err := n.submitter.Submit(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd, receiptOutput{
				Hash:            common.Hash(receipt.Hash),
				State:           receipt.State.String(),
				Kind:            receipt.Kind.String(),
				Payer:           receipt.Payer,
				ClientAccount:   receipt.ClientAccount,
				TransferAccount: receipt.TransferAccount,
			})
		},
	}
	addEnvelopeFlags(transferCmd.Flags())
	addPayloadFlags(transferCmd.Flags())
	transferCmd.Flags().String("payer", "", "Fee payer address")
	transferCmd.Flags().String("relay-owner", "", "Relay owner submitting the transfer")
	transferCmd.Flags().String("incoming-hash", "", "Hash reported by the source chain, defaults to the computed hash")
	_ = transferCmd.MarkFlagRequired("payer")
	_ = transferCmd.MarkFlagRequired("relay-owner")
	return transferCmd
}

type statusOutput struct {
	Hash      common.Hash `json:"hash"`
	Processed bool        `json:"processed"`
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <hash>",
		Short: "Report whether a message hash has been executed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HexOrCB58ToID(args[0])
			if err != nil {
				return fmt.Errorf("invalid hash: %w", err)
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			processed, err := n.ledger.Processed(cmd.Context(), hash)
			if err != nil {
				return err
			}
			return printJSON(cmd, statusOutput{Hash: common.Hash(hash), Processed: processed})
		},
	}
}
