// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"fmt"
	"unicode/utf8"

	"github.com/luxfi/xcm"
)

// Ownership hands a uniquely identified asset to a recipient on the
// destination chain.
type Ownership struct {
	Recipient xcm.Address
	AssetID   []byte
	URI       string
}

// NewOwnership creates a new ownership payload
func NewOwnership(recipient xcm.Address, assetID []byte, uri string) (*Ownership, error) {
	o := &Ownership{
		Recipient: recipient,
		AssetID:   assetID,
		URI:       uri,
	}
	if err := o.Verify(); err != nil {
		return nil, err
	}
	return o, nil
}

func (*Ownership) Kind() Kind { return KindOwnership }

// Verify verifies the ownership payload
func (o *Ownership) Verify() error {
	if len(o.AssetID) == 0 {
		return fmt.Errorf("%w: empty asset id", xcm.ErrInvalidPayload)
	}
	if len(o.AssetID) > xcm.MaxFieldSize || len(o.URI) > xcm.MaxFieldSize {
		return fmt.Errorf("%w: ownership field exceeds %d bytes", xcm.ErrInvalidPayload, xcm.MaxFieldSize)
	}
	if !utf8.ValidString(o.URI) {
		return fmt.Errorf("%w: uri is not valid UTF-8", xcm.ErrInvalidPayload)
	}
	return nil
}

// Bytes returns recipient | len | asset id | len | uri
func (o *Ownership) Bytes() []byte {
	w := xcm.NewWriter(xcm.AddressLen + 2*xcm.Uint32Len + len(o.AssetID) + len(o.URI))
	w.Address(o.Recipient)
	w.Bytes(o.AssetID)
	w.String(o.URI)
	b, _ := w.Finish()
	return b
}

// ParseOwnership decodes an ownership payload
func ParseOwnership(b []byte) (*Ownership, error) {
	r := xcm.NewReader(b)
	o := &Ownership{
		Recipient: r.Address("recipient"),
		AssetID:   r.Bytes("asset id"),
		URI:       r.String("uri"),
	}
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("failed to parse ownership payload: %w", err)
	}
	if err := o.Verify(); err != nil {
		return nil, err
	}
	return o, nil
}
