// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/xcm"
)

// AmountLen is the width of an encoded token amount
const AmountLen = 32

// Token credits Amount to Recipient on the destination chain
type Token struct {
	Recipient xcm.Address
	Amount    *uint256.Int
}

// NewToken creates a new token payload
func NewToken(recipient xcm.Address, amount *uint256.Int) (*Token, error) {
	t := &Token{
		Recipient: recipient,
		Amount:    amount,
	}
	if err := t.Verify(); err != nil {
		return nil, err
	}
	return t, nil
}

func (*Token) Kind() Kind { return KindToken }

func (t *Token) Verify() error {
	if t.Amount == nil || t.Amount.IsZero() {
		return fmt.Errorf("%w: token amount must be positive", xcm.ErrInvalidPayload)
	}
	if t.Recipient.IsEmpty() {
		return fmt.Errorf("%w: empty recipient", xcm.ErrInvalidPayload)
	}
	return nil
}

// Bytes returns recipient | amount (32 bytes, big-endian)
func (t *Token) Bytes() []byte {
	w := xcm.NewWriter(xcm.AddressLen + AmountLen)
	w.Address(t.Recipient)
	amount := new(uint256.Int)
	if t.Amount != nil {
		amount = t.Amount
	}
	b32 := amount.Bytes32()
	w.Fixed(b32[:])
	b, _ := w.Finish()
	return b
}

// ParseToken decodes a token payload
func ParseToken(b []byte) (*Token, error) {
	r := xcm.NewReader(b)
	recipient := r.Address("recipient")
	amount := r.Fixed(AmountLen, "amount")
	if err := r.Done(); err != nil {
		return nil, fmt.Errorf("failed to parse token payload: %w", err)
	}
	t := &Token{
		Recipient: recipient,
		Amount:    new(uint256.Int).SetBytes32(amount),
	}
	if err := t.Verify(); err != nil {
		return nil, err
	}
	return t, nil
}
