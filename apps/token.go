// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package apps

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

var ErrBalanceOverflow = errors.New("balance overflow")

// Token credits the amount of a token payload to its recipient.
type Token struct {
	lib *storage.Library
}

func NewToken(lib *storage.Library) *Token {
	return &Token{lib: lib}
}

func (*Token) Name() string { return "token" }

func (t *Token) Execute(tx storage.Txn, d *Delivery) error {
	p, ok := d.Payload.(*payload.Token)
	if !ok {
		return fmt.Errorf("unexpected payload %s", d.Payload.Kind())
	}

	balance := new(uint256.Int)
	if err := t.lib.RetrieveBalance(p.Recipient, balance)(tx); err != nil {
		return err
	}
	credited, overflow := new(uint256.Int).AddOverflow(balance, p.Amount)
	if overflow {
		return fmt.Errorf("%w: crediting %s to %s", ErrBalanceOverflow, p.Amount.Dec(), p.Recipient)
	}
	return t.lib.SaveBalance(p.Recipient, credited)(tx)
}
