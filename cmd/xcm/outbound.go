// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/luxfi/geth/common"
	"github.com/luxfi/ids"
	"github.com/spf13/cobra"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/ledger"
	"github.com/luxfi/xcm/utils"
)

type outboundOutput struct {
	Hash               common.Hash `json:"hash"`
	State              string      `json:"state"`
	TransactionID      uint32      `json:"transaction-id"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	DestinationAddress xcm.Address `json:"destination-address"`
	ClientAccount      xcm.Address `json:"client-account"`
	TransferAccount    xcm.Address `json:"transfer-account"`
	Envelope           string      `json:"envelope,omitempty"`
	StatusCode         *uint8      `json:"status-code,omitempty"`
}

func newOutboundCmd() *cobra.Command {
	outboundCmd := &cobra.Command{
		Use:   "outbound",
		Short: "Initiate outbound messages and track their delivery",
	}

	initiateCmd := &cobra.Command{
		Use:   "initiate",
		Short: "Send a payload to the address trusted on the destination chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := addressFlag(cmd, "authority")
			if err != nil {
				return err
			}
			user, err := addressFlag(cmd, "user")
			if err != nil {
				return err
			}
			chainID, _ := cmd.Flags().GetUint64("chain")
			payloadBytes, err := payloadFromFlags(cmd)
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			out, err := n.ledger.Initiate(cmd.Context(), ledger.OutboundRequest{
				Authority:          authority,
				User:               user,
				DestinationChainID: chainID,
				Payload:            payloadBytes,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd, outboundOutput{
				Hash:               common.Hash(out.Hash),
				State:              out.State.String(),
				TransactionID:      out.Envelope.TransactionID,
				DestinationChainID: out.Envelope.DestinationChainID,
				DestinationAddress: out.Envelope.DestinationAddress,
				ClientAccount:      out.ClientAccount,
				TransferAccount:    out.TransferAccount,
				Envelope:           "0x" + hex.EncodeToString(out.Envelope.Bytes()),
			})
		},
	}
	initiateCmd.Flags().String("authority", "", "Signer of the message, must be the user")
	initiateCmd.Flags().String("user", "", "Client owner sending the message")
	initiateCmd.Flags().Uint64("chain", 0, "Destination chain ID")
	addPayloadFlags(initiateCmd.Flags())
	_ = initiateCmd.MarkFlagRequired("authority")
	_ = initiateCmd.MarkFlagRequired("user")
	_ = initiateCmd.MarkFlagRequired("chain")

	sendCmd := &cobra.Command{
		Use:   "send <hash>",
		Short: "Mark an initiated message as dispatched by the relay owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HexOrCB58ToID(args[0])
			if err != nil {
				return fmt.Errorf("invalid hash: %w", err)
			}
			sender, err := addressFlag(cmd, "sender")
			if err != nil {
				return err
			}
			user, err := addressFlag(cmd, "user")
			if err != nil {
				return err
			}
			chainID, _ := cmd.Flags().GetUint64("chain")
			txID, _ := cmd.Flags().GetUint32("tx-id")

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			err = n.ledger.Send(cmd.Context(), ledger.SendRequest{
				Sender:             sender,
				User:               user,
				DestinationChainID: chainID,
				TransactionID:      txID,
				Hash:               hash,
			})
			if err != nil {
				return err
			}
			return printOutgoing(cmd, n, user, hash)
		},
	}
	sendCmd.Flags().String("sender", "", "Relay owner dispatching the message")
	sendCmd.Flags().String("user", "", "Client owner that initiated the message")
	sendCmd.Flags().Uint64("chain", 0, "Destination chain ID")
	sendCmd.Flags().Uint32("tx-id", 0, "Transaction ID assigned at initiation")
	_ = sendCmd.MarkFlagRequired("sender")
	_ = sendCmd.MarkFlagRequired("user")
	_ = sendCmd.MarkFlagRequired("chain")

	resultCmd := &cobra.Command{
		Use:   "result <hash>",
		Short: "Record the delivery result of a sent message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HexOrCB58ToID(args[0])
			if err != nil {
				return fmt.Errorf("invalid hash: %w", err)
			}
			sender, err := addressFlag(cmd, "sender")
			if err != nil {
				return err
			}
			user, err := addressFlag(cmd, "user")
			if err != nil {
				return err
			}
			statusCode, _ := cmd.Flags().GetUint8("status")

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			err = n.ledger.ReportResult(cmd.Context(), ledger.ResultRequest{
				Sender:     sender,
				User:       user,
				Hash:       hash,
				StatusCode: statusCode,
			})
			if err != nil {
				return err
			}
			return printOutgoing(cmd, n, user, hash)
		},
	}
	resultCmd.Flags().String("sender", "", "Relay owner reporting the result")
	resultCmd.Flags().String("user", "", "Client owner that initiated the message")
	resultCmd.Flags().Uint8("status", 0, "Delivery status code")
	_ = resultCmd.MarkFlagRequired("sender")
	_ = resultCmd.MarkFlagRequired("user")

	showCmd := &cobra.Command{
		Use:   "show <hash>",
		Short: "Show the outbound record of a message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := utils.HexOrCB58ToID(args[0])
			if err != nil {
				return fmt.Errorf("invalid hash: %w", err)
			}
			user, err := addressFlag(cmd, "user")
			if err != nil {
				return err
			}

			n, err := openNode(cmd)
			if err != nil {
				return err
			}
			defer n.Close()

			return printOutgoing(cmd, n, user, hash)
		},
	}
	showCmd.Flags().String("user", "", "Client owner that initiated the message")
	_ = showCmd.MarkFlagRequired("user")

	outboundCmd.AddCommand(initiateCmd, sendCmd, resultCmd, showCmd)
	return outboundCmd
}

func printOutgoing(cmd *cobra.Command, n *node, user xcm.Address, hash ids.ID) error {
	transfer, err := n.ledger.Outgoing(cmd.Context(), user, hash)
	if err != nil {
		return err
	}
	client, err := n.ledger.Deriver().ClientAccount(user)
	if err != nil {
		return err
	}
	account, err := n.ledger.Deriver().OutgoingTransfer(user, hash)
	if err != nil {
		return err
	}
	out := outboundOutput{
		Hash:               common.Hash(transfer.Hash),
		State:              ledger.OutboundStateOf(transfer).String(),
		TransactionID:      transfer.TransactionID,
		DestinationChainID: transfer.DestinationChainID,
		DestinationAddress: transfer.DestinationAddress,
		ClientAccount:      client.Address,
		TransferAccount:    account.Address,
	}
	if transfer.Reported {
		code := transfer.StatusCode
		out.StatusCode = &code
	}
	return printJSON(cmd, out)
}
