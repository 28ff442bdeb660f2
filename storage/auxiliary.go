// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Fallback goes through the provided operations until one of them succeeds.
// If all of them fail, a multi-error with all errors is returned.
func Fallback(ops ...func(Txn) error) func(Txn) error {
	return func(tx Txn) error {
		var errs error
		for _, op := range ops {
			err := op(tx)
			if err == nil {
				return nil
			}
			errs = multierror.Append(errs, err)
		}
		return errs
	}
}

// Combine goes through the provided operations until one of them fails.
// When the first one fails, the related error is returned.
func Combine(ops ...func(Txn) error) func(Txn) error {
	return func(tx Txn) error {
		for _, op := range ops {
			if err := op(tx); err != nil {
				return err
			}
		}
		return nil
	}
}

func (l *Library) retrieve(key []byte, v interface{}) func(Txn) error {
	return func(tx Txn) error {
		val, err := tx.Get(key)
		if err != nil {
			return err
		}
		if err := l.codec.Unmarshal(val, v); err != nil {
			return fmt.Errorf("could not decode value (key: %x): %w", key, err)
		}
		return nil
	}
}

func (l *Library) save(key []byte, value interface{}) func(Txn) error {
	// Encode right away so the closure does not observe later changes to value.
	val, err := l.codec.Marshal(value)
	return func(tx Txn) error {
		if err != nil {
			return fmt.Errorf("could not encode value (key: %x): %w", key, err)
		}
		if err := tx.Set(key, val); err != nil {
			return fmt.Errorf("could not set value (key: %x): %w", key, err)
		}
		return nil
	}
}
