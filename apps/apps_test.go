// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package apps

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/xcm"
	"github.com/luxfi/xcm/payload"
	"github.com/luxfi/xcm/storage"
)

func address(b byte) xcm.Address {
	var a xcm.Address
	a[0] = b
	return a
}

func delivery(p payload.Payload) *Delivery {
	return &Delivery{
		Hash: ids.GenerateTestID(),
		Envelope: &xcm.Envelope{
			DestinationAddress: address(1),
			DestinationChainID: 1000,
			Payload:            p.Bytes(),
			SourceAddress:      address(2),
			SourceChainID:      1,
		},
		Payload: p,
	}
}

func TestRouter(t *testing.T) {
	require := require.New(t)

	lib := storage.New(storage.RLPCodec{})
	db := storage.NewMemoryDB()
	router := NewDefaultRouter(lib)

	own, err := payload.NewOwnership(address(7), []byte("asset"), "https://google1.com")
	require.NoError(err)
	require.NoError(db.Update(func(tx storage.Txn) error {
		return router.Execute(tx, delivery(own))
	}))
	var owner xcm.Address
	require.NoError(db.View(lib.RetrieveAssetOwner([]byte("asset"), &owner)))
	require.Equal(address(7), owner)

	tok, err := payload.NewToken(address(8), uint256.NewInt(5))
	require.NoError(err)
	for i := 0; i < 2; i++ {
		require.NoError(db.Update(func(tx storage.Txn) error {
			return router.Execute(tx, delivery(tok))
		}))
	}
	balance := new(uint256.Int)
	require.NoError(db.View(lib.RetrieveBalance(address(8), balance)))
	require.Equal(uint64(10), balance.Uint64())

	d := delivery(payload.NewGeneric([]byte("ping")))
	require.NoError(db.Update(func(tx storage.Txn) error {
		return router.Execute(tx, d)
	}))
	var data []byte
	require.NoError(db.View(lib.RetrieveInboxMessage(address(1), d.Hash, &data)))
	require.Equal([]byte("ping"), data)
}

func TestRouterUnknownKind(t *testing.T) {
	router := NewRouter()
	err := router.Execute(nil, delivery(payload.NewGeneric([]byte("x"))))
	require.ErrorIs(t, err, ErrNoApplication)
}

func TestTokenOverflow(t *testing.T) {
	require := require.New(t)

	lib := storage.New(storage.RLPCodec{})
	db := storage.NewMemoryDB()
	app := NewToken(lib)

	max := new(uint256.Int).SetAllOne()
	require.NoError(db.Update(lib.SaveBalance(address(8), max)))

	tok, err := payload.NewToken(address(8), uint256.NewInt(1))
	require.NoError(err)
	err = db.Update(func(tx storage.Txn) error {
		return app.Execute(tx, delivery(tok))
	})
	require.True(errors.Is(err, ErrBalanceOverflow))

	balance := new(uint256.Int)
	require.NoError(db.View(lib.RetrieveBalance(address(8), balance)))
	require.Zero(max.Cmp(balance))
}

func TestApplicationRejectsWrongPayload(t *testing.T) {
	tx := storage.NewMemoryDB()
	err := tx.Update(func(tx storage.Txn) error {
		return NewOwnership(storage.New(storage.RLPCodec{})).Execute(tx, delivery(payload.NewGeneric([]byte("x"))))
	})
	require.Error(t, err)
}
