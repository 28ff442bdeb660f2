// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"encoding/hex"
	"strings"

	"github.com/luxfi/ids"

	"github.com/luxfi/xcm/cache"
)

var (
	ClientSeed           = []byte("client")
	TrustedAddressSeed   = []byte("trusted_address")
	IncomingTransferSeed = []byte("incoming_transfer")
	OutgoingTransferSeed = []byte("outgoing_transfer")
)

// ClientAccountSeeds are the seeds of the client account owned by owner.
func ClientAccountSeeds(owner Address) [][]byte {
	return [][]byte{ClientSeed, owner[:]}
}

// TrustedAddressSeeds are the seeds of the trusted source record kept by a
// client account for one counterpart chain.
func TrustedAddressSeeds(client Address, chainID uint64) [][]byte {
	return [][]byte{TrustedAddressSeed, client[:], ChainIDSeed(chainID)}
}

// IncomingTransferSeeds are the seeds of the account that tracks one inbound
// message for a destination.
func IncomingTransferSeeds(destination Address, hash ids.ID) [][]byte {
	return [][]byte{IncomingTransferSeed, destination[:], hash[:]}
}

// OutgoingTransferSeeds are the seeds of the account that tracks one outbound
// message sent by user.
func OutgoingTransferSeeds(user Address, hash ids.ID) [][]byte {
	return [][]byte{OutgoingTransferSeed, user[:], hash[:]}
}

// Derivation is a derived address together with the bump that produced it.
type Derivation struct {
	Address Address
	Bump    uint8
}

// Deriver derives addresses under one program id. Results are memoized;
// derivation is pure so entries never go stale.
type Deriver struct {
	program Address
	cache   *cache.LRUCache[string, Derivation]
}

func NewDeriver(program Address, cacheSize int) *Deriver {
	return &Deriver{
		program: program,
		cache:   cache.NewLRUCache[string, Derivation](cacheSize),
	}
}

func (d *Deriver) Program() Address {
	return d.program
}

// Derive runs the bump search for seeds.
func (d *Deriver) Derive(seeds [][]byte) (Derivation, error) {
	return d.cache.Get(seedsKey(seeds), func(string) (Derivation, error) {
		addr, bump, err := FindProgramAddress(seeds, d.program)
		if err != nil {
			return Derivation{}, err
		}
		return Derivation{Address: addr, Bump: bump}, nil
	}, false)
}

func (d *Deriver) ClientAccount(owner Address) (Derivation, error) {
	return d.Derive(ClientAccountSeeds(owner))
}

func (d *Deriver) TrustedRecord(client Address, chainID uint64) (Derivation, error) {
	return d.Derive(TrustedAddressSeeds(client, chainID))
}

func (d *Deriver) IncomingTransfer(destination Address, hash ids.ID) (Derivation, error) {
	return d.Derive(IncomingTransferSeeds(destination, hash))
}

func (d *Deriver) OutgoingTransfer(user Address, hash ids.ID) (Derivation, error) {
	return d.Derive(OutgoingTransferSeeds(user, hash))
}

// seedsKey joins hex encoded seeds so that distinct tuples never collide.
func seedsKey(seeds [][]byte) string {
	parts := make([]string, len(seeds))
	for i, s := range seeds {
		parts[i] = hex.EncodeToString(s)
	}
	return strings.Join(parts, "/")
}
