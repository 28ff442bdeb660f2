// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/xcm"
)

// SaveClient is an operation that writes a client account under its derived address.
func (l *Library) SaveClient(address xcm.Address, client *ClientAccount) func(Txn) error {
	return l.save(EncodeKey(PrefixClient, address), client)
}

// RetrieveClient retrieves the client account at the given address.
func (l *Library) RetrieveClient(address xcm.Address, client *ClientAccount) func(Txn) error {
	return l.retrieve(EncodeKey(PrefixClient, address), client)
}

// SaveTrustedSource is an operation that writes a trusted source record under
// its derived record address, replacing any previous record.
func (l *Library) SaveTrustedSource(record xcm.Address, source TrustedSource) func(Txn) error {
	return l.save(EncodeKey(PrefixTrustedSource, record), &source)
}

// RetrieveTrustedSource retrieves the trusted source record at the given address.
func (l *Library) RetrieveTrustedSource(record xcm.Address, source *TrustedSource) func(Txn) error {
	return l.retrieve(EncodeKey(PrefixTrustedSource, record), source)
}

// DeleteTrustedSource is an operation that removes the record at the given address.
func (l *Library) DeleteTrustedSource(record xcm.Address) func(Txn) error {
	return func(tx Txn) error {
		key := EncodeKey(PrefixTrustedSource, record)
		if _, err := tx.Get(key); err != nil {
			return err
		}
		return tx.Delete(key)
	}
}

// MarkProcessed is an operation that records hash as executed. It fails with
// xcm.ErrAlreadyProcessed if the record exists; records are never removed.
func (l *Library) MarkProcessed(hash ids.ID) func(Txn) error {
	return func(tx Txn) error {
		key := EncodeKey(PrefixProcessed, hash)
		_, err := tx.Get(key)
		switch {
		case err == nil:
			return fmt.Errorf("%w: %s", xcm.ErrAlreadyProcessed, hash)
		case !errors.Is(err, xcm.ErrNotFound):
			return err
		}
		return tx.Set(key, []byte{})
	}
}

// LookupProcessed reports whether hash has been executed.
func (l *Library) LookupProcessed(hash ids.ID, processed *bool) func(Txn) error {
	return func(tx Txn) error {
		_, err := tx.Get(EncodeKey(PrefixProcessed, hash))
		switch {
		case err == nil:
			*processed = true
		case errors.Is(err, xcm.ErrNotFound):
			*processed = false
		default:
			return err
		}
		return nil
	}
}

// CreateOutgoingTransfer is an operation that writes a new outbound record
// under its derived transfer account. It fails with xcm.ErrAlreadyProcessed
// if the account is taken.
func (l *Library) CreateOutgoingTransfer(account xcm.Address, transfer *OutgoingTransfer) func(Txn) error {
	save := l.SaveOutgoingTransfer(account, transfer)
	return func(tx Txn) error {
		_, err := tx.Get(EncodeKey(PrefixOutgoing, account))
		switch {
		case err == nil:
			return fmt.Errorf("%w: outgoing transfer %s", xcm.ErrAlreadyProcessed, account)
		case !errors.Is(err, xcm.ErrNotFound):
			return err
		}
		return save(tx)
	}
}

// SaveOutgoingTransfer is an operation that writes an outbound record.
func (l *Library) SaveOutgoingTransfer(account xcm.Address, transfer *OutgoingTransfer) func(Txn) error {
	return l.save(EncodeKey(PrefixOutgoing, account), transfer)
}

// RetrieveOutgoingTransfer retrieves the outbound record at the given transfer account.
func (l *Library) RetrieveOutgoingTransfer(account xcm.Address, transfer *OutgoingTransfer) func(Txn) error {
	return l.retrieve(EncodeKey(PrefixOutgoing, account), transfer)
}

// SaveAssetOwner is an operation that assigns an asset to owner.
func (l *Library) SaveAssetOwner(assetID []byte, owner xcm.Address) func(Txn) error {
	return l.save(EncodeKey(PrefixAssetOwner, assetID), owner)
}

// RetrieveAssetOwner retrieves the current owner of an asset.
func (l *Library) RetrieveAssetOwner(assetID []byte, owner *xcm.Address) func(Txn) error {
	return l.retrieve(EncodeKey(PrefixAssetOwner, assetID), owner)
}

// SaveBalance is an operation that writes the balance of account as 32 big-endian bytes.
func (l *Library) SaveBalance(account xcm.Address, balance *uint256.Int) func(Txn) error {
	val := balance.Bytes32()
	return func(tx Txn) error {
		return tx.Set(EncodeKey(PrefixBalance, account), val[:])
	}
}

// RetrieveBalance retrieves the balance of account. Unknown accounts hold zero.
func (l *Library) RetrieveBalance(account xcm.Address, balance *uint256.Int) func(Txn) error {
	return func(tx Txn) error {
		val, err := tx.Get(EncodeKey(PrefixBalance, account))
		switch {
		case errors.Is(err, xcm.ErrNotFound):
			balance.Clear()
			return nil
		case err != nil:
			return err
		}
		if len(val) != 32 {
			return fmt.Errorf("could not decode balance of %s: %d bytes", account, len(val))
		}
		balance.SetBytes32(val)
		return nil
	}
}

// SaveInboxMessage is an operation that stores a generic payload for its destination.
func (l *Library) SaveInboxMessage(destination xcm.Address, hash ids.ID, data []byte) func(Txn) error {
	return func(tx Txn) error {
		return tx.Set(EncodeKey(PrefixInbox, destination, hash), data)
	}
}

// RetrieveInboxMessage retrieves a stored generic payload.
func (l *Library) RetrieveInboxMessage(destination xcm.Address, hash ids.ID, data *[]byte) func(Txn) error {
	return func(tx Txn) error {
		val, err := tx.Get(EncodeKey(PrefixInbox, destination, hash))
		if err != nil {
			return err
		}
		*data = val
		return nil
	}
}
