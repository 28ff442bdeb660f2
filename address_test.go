// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package xcm

import (
	"bytes"
	"testing"

	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestFindProgramAddress(t *testing.T) {
	require := require.New(t)

	program := testAddress(200)
	owner := testAddress(3)

	addr, bump, err := FindProgramAddress(ClientAccountSeeds(owner), program)
	require.NoError(err)
	require.False(IsOnCurve(addr))

	// deterministic
	again, againBump, err := FindProgramAddress(ClientAccountSeeds(owner), program)
	require.NoError(err)
	require.Equal(addr, again)
	require.Equal(bump, againBump)

	// the bump reproduces the address directly
	direct, err := CreateProgramAddress(append(ClientAccountSeeds(owner), []byte{bump}), program)
	require.NoError(err)
	require.Equal(addr, direct)

	verified, err := VerifyProgramAddress(addr, ClientAccountSeeds(owner), program)
	require.NoError(err)
	require.Equal(bump, verified)
}

func TestDerivedAddressesAreDistinct(t *testing.T) {
	require := require.New(t)

	program := testAddress(200)
	client, _, err := FindProgramAddress(ClientAccountSeeds(testAddress(3)), program)
	require.NoError(err)

	seen := map[Address]string{client: "client"}
	check := func(name string, seeds [][]byte, prog Address) {
		a, _, err := FindProgramAddress(seeds, prog)
		require.NoError(err)
		prev, dup := seen[a]
		require.False(dup, "%s collides with %s", name, prev)
		seen[a] = name
	}
	check("other owner", ClientAccountSeeds(testAddress(4)), program)
	check("other program", ClientAccountSeeds(testAddress(3)), testAddress(201))
	check("trusted chain 1", TrustedAddressSeeds(client, 1), program)
	check("trusted chain 2", TrustedAddressSeeds(client, 2), program)
	check("trusted chain 1<<32", TrustedAddressSeeds(client, 1<<32), program)

	hash := ids.ID{1, 2, 3}
	check("incoming transfer", IncomingTransferSeeds(testAddress(3), hash), program)
	check("outgoing transfer", OutgoingTransferSeeds(testAddress(3), hash), program)
}

func TestVerifyProgramAddressMismatch(t *testing.T) {
	program := testAddress(200)
	_, err := VerifyProgramAddress(testAddress(9), ClientAccountSeeds(testAddress(3)), program)
	require.ErrorIs(t, err, ErrInvalidAccount)
	require.True(t, IsPermanent(err))
}

func TestSeedLimits(t *testing.T) {
	program := testAddress(200)

	tests := []struct {
		name        string
		seeds       [][]byte
		expectedErr error
	}{
		{
			name:  "max seed length",
			seeds: [][]byte{bytes.Repeat([]byte{1}, MaxSeedLen)},
		},
		{
			name:        "seed too long",
			seeds:       [][]byte{bytes.Repeat([]byte{1}, MaxSeedLen+1)},
			expectedErr: ErrSeedTooLong,
		},
		{
			name:        "no room for bump",
			seeds:       make([][]byte, MaxSeeds),
			expectedErr: ErrSeedTooLong,
		},
		{
			name:  "room for bump",
			seeds: make([][]byte, MaxSeeds-1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := FindProgramAddress(tt.seeds, program)
			if tt.expectedErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	_, err := CreateProgramAddress(make([][]byte, MaxSeeds+1), program)
	require.ErrorIs(t, err, ErrSeedTooLong)
}

func TestTrustedAddressSeedsLittleEndian(t *testing.T) {
	seeds := TrustedAddressSeeds(testAddress(1), 1000)
	require.Len(t, seeds, 3)
	require.Equal(t, []byte{0xe8, 0x03, 0, 0, 0, 0, 0, 0}, seeds[2])
}

func TestDeriver(t *testing.T) {
	require := require.New(t)

	program := testAddress(200)
	owner := testAddress(3)
	d := NewDeriver(program, 16)
	require.Equal(program, d.Program())

	client, err := d.ClientAccount(owner)
	require.NoError(err)
	expected, bump, err := FindProgramAddress(ClientAccountSeeds(owner), program)
	require.NoError(err)
	require.Equal(Derivation{Address: expected, Bump: bump}, client)

	record, err := d.TrustedRecord(client.Address, 1)
	require.NoError(err)
	expected, _, err = FindProgramAddress(TrustedAddressSeeds(client.Address, 1), program)
	require.NoError(err)
	require.Equal(expected, record.Address)

	cached, err := d.ClientAccount(owner)
	require.NoError(err)
	require.Equal(client, cached)
}

func TestAddressText(t *testing.T) {
	require := require.New(t)

	a := testAddress(5)
	parsed, err := ParseAddress(a.String())
	require.NoError(err)
	require.Equal(a, parsed)

	parsed, err = ParseAddress(a.Hex())
	require.NoError(err)
	require.Equal(a, parsed)

	text, err := a.MarshalText()
	require.NoError(err)
	var b Address
	require.NoError(b.UnmarshalText(text))
	require.Equal(a, b)

	_, err = ParseAddress("0x1234")
	require.Error(err)
	_, err = ParseAddress("not-base58-0OIl")
	require.Error(err)
	require.True(EmptyAddress.IsEmpty())
	require.False(a.IsEmpty())
}
