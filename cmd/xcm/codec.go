// Copyright (C) 2025, Lux Industries, Inc.
// See the file LICENSE for licensing terms.

package main

import (
	"encoding/hex"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/geth/common"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/utils"
)

func addEnvelopeFlags(fs *pflag.FlagSet) {
	fs.Uint64("source-chain", 0, "Source chain ID")
	fs.String("source", "", "Source address")
	fs.Uint64("dest-chain", 0, "Destination chain ID")
	fs.String("dest", "", "Destination address")
	fs.Uint32("tx-id", 0, "Transaction ID on the source chain")
}

func addPayloadFlags(fs *pflag.FlagSet) {
	fs.String("kind", payload.KindOwnership.String(), "Payload kind (generic, ownership, token)")
	fs.String("recipient", "", "Recipient address (ownership, token)")
	fs.String("asset-id", "", "Asset ID, hex (ownership)")
	fs.String("uri", "", "Asset URI (ownership)")
	fs.String("amount", "", "Decimal amount (token)")
	fs.String("data", "", "Raw payload, hex (generic)")
}

// payloadFromFlags encodes the payload described by the payload flags
func payloadFromFlags(cmd *cobra.Command) ([]byte, error) {
	fs := cmd.Flags()
	rawKind, _ := fs.GetString("kind")
	kind, err := payload.ParseKind(rawKind)
	if err != nil {
		return nil, err
	}

	var p payload.Payload
	switch kind {
	case payload.KindGeneric:
		rawData, _ := fs.GetString("data")
		data, err := utils.DecodeHex(rawData)
		if err != nil {
			return nil, fmt.Errorf("invalid --data: %w", err)
		}
		p = payload.NewGeneric(data)
	case payload.KindOwnership:
		recipient, err := addressFlag(cmd, "recipient")
		if err != nil {
			return nil, err
		}
		rawAssetID, _ := fs.GetString("asset-id")
		assetID, err := utils.DecodeHex(rawAssetID)
		if err != nil {
			return nil, fmt.Errorf("invalid --asset-id: %w", err)
		}
		uri, _ := fs.GetString("uri")
		p, err = payload.NewOwnership(recipient, assetID, uri)
		if err != nil {
			return nil, err
		}
	case payload.KindToken:
		recipient, err := addressFlag(cmd, "recipient")
		if err != nil {
			return nil, err
		}
		rawAmount, _ := fs.GetString("amount")
		amount, err := uint256.FromDecimal(rawAmount)
		if err != nil {
			return nil, fmt.Errorf("invalid --amount: %w", err)
		}
		p, err = payload.NewToken(recipient, amount)
		if err != nil {
			return nil, err
		}
	}
	return p.Bytes(), nil
}

func envelopeFromFlags(cmd *cobra.Command, payloadBytes []byte) (*xcm.Envelope, error) {
	fs := cmd.Flags()
	source, err := addressFlag(cmd, "source")
	if err != nil {
		return nil, err
	}
	destination, err := addressFlag(cmd, "dest")
	if err != nil {
		return nil, err
	}
	sourceChainID, _ := fs.GetUint64("source-chain")
	destinationChainID, _ := fs.GetUint64("dest-chain")
	txID, _ := fs.GetUint32("tx-id")
	return xcm.NewEnvelope(destination, destinationChainID, payloadBytes, source, sourceChainID, txID)
}

type encodeOutput struct {
	Envelope string      `json:"envelope"`
	Payload  string      `json:"payload"`
	Hash     common.Hash `json:"hash"`
	Hasher   string      `json:"hasher"`
}

func newEncodeCmd() *cobra.Command {
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a message envelope",
		Long:  `Encode a payload and its envelope canonically and print both with the envelope hash.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := hasherFlag(cmd)
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
			encoded, err := envelope.Encode()
			if err != nil {
				return err
			}
			hash, err := envelope.Hash(hasher)
			if err != nil {
				return err
			}
			return printJSON(cmd, encodeOutput{
				Envelope: "0x" + hex.EncodeToString(encoded),
				Payload:  "0x" + hex.EncodeToString(payloadBytes),
				Hash:     common.Hash(hash),
				Hasher:   hasher.Name(),
			})
		},
	}
	addEnvelopeFlags(encodeCmd.Flags())
	addPayloadFlags(encodeCmd.Flags())
	return encodeCmd
}

func newHashCmd() *cobra.Command {
	hashCmd := &cobra.Command{
		Use:   "hash <envelope-hex>",
		Short: "Hash an encoded envelope",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := hasherFlag(cmd)
			if err != nil {
				return err
			}
			b, err := utils.DecodeHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid envelope hex: %w", err)
			}
			// parse first so that only canonical encodings are hashed
			envelope, err := xcm.ParseEnvelope(b)
			if err != nil {
				return err
			}
			hash, err := envelope.Hash(hasher)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), common.Hash(hash).Hex())
			return err
		},
	}
	return hashCmd
}

type decodeOutput struct {
	SourceChainID      uint64      `json:"source-chain-id"`
	SourceAddress      xcm.Address `json:"source-address"`
	DestinationChainID uint64      `json:"destination-chain-id"`
	DestinationAddress xcm.Address `json:"destination-address"`
	TransactionID      uint32      `json:"transaction-id"`
	Kind               string      `json:"kind"`
	Payload            interface{} `json:"payload"`
}

type ownershipOutput struct {
	Recipient xcm.Address `json:"recipient"`
	AssetID   string      `json:"asset-id"`
	URI       string      `json:"uri"`
}

type tokenOutput struct {
	Recipient xcm.Address `json:"recipient"`
	Amount    string      `json:"amount"`
}

type genericOutput struct {
	Data string `json:"data"`
}

func newDecodeCmd() *cobra.Command {
	decodeCmd := &cobra.Command{
		Use:   "decode <envelope-hex>",
		Short: "Decode an encoded envelope and its payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := utils.DecodeHex(args[0])
			if err != nil {
				return fmt.Errorf("invalid envelope hex: %w", err)
			}
			envelope, err := xcm.ParseEnvelope(b)
			if err != nil {
				return err
			}
			rawKind, _ := cmd.Flags().GetString("kind")
			kind, err := payload.ParseKind(rawKind)
			if err != nil {
				return err
			}
			p, err := payload.Parse(kind, envelope.Payload)
			if err != nil {
				return err
			}

			out := decodeOutput{
				SourceChainID:      envelope.SourceChainID,
				SourceAddress:      envelope.SourceAddress,
				DestinationChainID: envelope.DestinationChainID,
				DestinationAddress: envelope.DestinationAddress,
				TransactionID:      envelope.TransactionID,
				Kind:               kind.String(),
			}
			switch p := p.(type) {
			case *payload.Ownership:
				out.Payload = ownershipOutput{Recipient: p.Recipient, AssetID: "0x" + hex.EncodeToString(p.AssetID), URI: p.URI}
			case *payload.Token:
				out.Payload = tokenOutput{Recipient: p.Recipient, Amount: p.Amount.Dec()}
			case *payload.Generic:
				out.Payload = genericOutput{Data: "0x" + hex.EncodeToString(p.Data)}
			}
			return printJSON(cmd, out)
		},
	}
	decodeCmd.Flags().String("kind", payload.KindOwnership.String(), "Payload kind (generic, ownership, token)")
	return decodeCmd
}
