// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package payload

import (
	"encoding/binary"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/xcm"
)

func testAddress(b byte) xcm.Address {
	var a xcm.Address
	for i := range a {
		a[i] = b ^ byte(i)
	}
	return a
}

func TestOwnership(t *testing.T) {
	require := require.New(t)

	payer := testAddress(7)
	o, err := NewOwnership(payer, payer[:], "https://google1.com")
	require.NoError(err)
	require.Equal(KindOwnership, o.Kind())

	b := o.Bytes()
	var expected []byte
	expected = append(expected, payer[:]...)
	expected = binary.BigEndian.AppendUint32(expected, xcm.AddressLen)
	expected = append(expected, payer[:]...)
	expected = binary.BigEndian.AppendUint32(expected, uint32(len("https://google1.com")))
	expected = append(expected, "https://google1.com"...)
	require.Equal(expected, b)

	parsed, err := Parse(KindOwnership, b)
	require.NoError(err)
	require.Equal(o, parsed)
	require.Equal(b, parsed.Bytes())
}

func TestOwnershipErrors(t *testing.T) {
	valid, err := NewOwnership(testAddress(1), []byte{1, 2}, "ipfs://x")
	require.NoError(t, err)
	b := valid.Bytes()

	badURI := encodeOwnership(testAddress(1), []byte{1}, string([]byte{0xff, 0xfe}))

	tests := []struct {
		name        string
		input       []byte
		expectedErr error
	}{
		{"truncated recipient", b[:16], xcm.ErrTruncatedInput},
		{"truncated uri", b[:len(b)-2], xcm.ErrTruncatedInput},
		{"trailing", append(append([]byte{}, b...), 9), xcm.ErrTrailingBytes},
		{"invalid utf8", badURI, xcm.ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOwnership(tt.input)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}

	_, err = NewOwnership(testAddress(1), nil, "x")
	require.ErrorIs(t, err, xcm.ErrInvalidPayload)
}

// encodeOwnership encodes fields without validating them.
func encodeOwnership(recipient xcm.Address, assetID []byte, uri string) []byte {
	return (&Ownership{Recipient: recipient, AssetID: assetID, URI: uri}).Bytes()
}

func TestToken(t *testing.T) {
	require := require.New(t)

	amount := uint256.NewInt(1_000_000)
	tok, err := NewToken(testAddress(3), amount)
	require.NoError(err)

	b := tok.Bytes()
	require.Len(b, xcm.AddressLen+AmountLen)
	require.Equal(byte(0x40), b[len(b)-1]) // 1_000_000 = 0x0f4240

	parsed, err := Parse(KindToken, b)
	require.NoError(err)
	got := parsed.(*Token)
	require.Equal(tok.Recipient, got.Recipient)
	require.Zero(amount.Cmp(got.Amount))

	_, err = ParseToken(b[:40])
	require.ErrorIs(err, xcm.ErrTruncatedInput)

	zero := (&Token{Recipient: testAddress(3), Amount: new(uint256.Int)}).Bytes()
	_, err = ParseToken(zero)
	require.ErrorIs(err, xcm.ErrInvalidPayload)
}

func TestGeneric(t *testing.T) {
	require := require.New(t)

	p, err := Parse(KindGeneric, []byte("opaque"))
	require.NoError(err)
	require.Equal(KindGeneric, p.Kind())
	require.Equal([]byte("opaque"), p.Bytes())
}

func TestParseUnknownKind(t *testing.T) {
	_, err := Parse(Kind(9), []byte{1})
	require.ErrorIs(t, err, xcm.ErrInvalidPayload)
	require.False(t, Kind(9).Valid())
	require.Equal(t, "kind(9)", Kind(9).String())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in       string
		expected Kind
	}{
		{"generic", KindGeneric},
		{"NFT", KindOwnership},
		{"ownership", KindOwnership},
		{"2", KindToken},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, err := ParseKind(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.expected, k)
		})
	}
	_, err := ParseKind("swap")
	require.ErrorIs(t, err, xcm.ErrInvalidPayload)
}
