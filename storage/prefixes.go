// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

const (
	PrefixTrustedSource = 0x01
	PrefixProcessed     = 0x02
	PrefixClient        = 0x03
	PrefixOutgoing      = 0x04

	// application state
	PrefixAssetOwner = 0x10
	PrefixBalance    = 0x11
	PrefixInbox      = 0x12
)
