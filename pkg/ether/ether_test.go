package ether

import (
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEther(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"0", "0"},
		{"1", "1000000000000000000"},
		{"1.5", "1500000000000000000"},
		{"0.000000000000000001", "1"},
		{" 2.50 ", "2500000000000000000"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseEther(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}
}

func TestParseEther_Rechaza(t *testing.T) {
	for _, in := range []string{"abc", "-1", "0.0000000000000000001", "1e3", "1.2.3"} {
		_, err := ParseEther(in)
		assert.Error(t, err, in)
	}
}

func TestParseEther_LimiteUint256(t *testing.T) {
	maxWei := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	maxEther := FormatEther(maxWei)

	got, err := ParseEther(maxEther)
	require.NoError(t, err)
	assert.Equal(t, 0, maxWei.Cmp(got))

	_, err = ParseEther("1" + strings.Repeat("0", 70))
	assert.Error(t, err)
	_, err = NormalizeEther("1" + strings.Repeat("0", 70))
	assert.Error(t, err)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "1.0", FormatEther(big.NewInt(1_000_000_000_000_000_000)))
	assert.Equal(t, "0.25", FormatEther(big.NewInt(250_000_000_000_000_000)))
	assert.Equal(t, "0.0", FormatEther(big.NewInt(0)))
	assert.Equal(t, "0.0", FormatEther(nil))
}

func TestEther_IdaYVuelta(t *testing.T) {
	for _, in := range []string{"1.0", "0.1", "123.456789", "0.000000000000000001"} {
		wei, err := ParseEther(in)
		require.NoError(t, err)
		assert.Equal(t, in, FormatEther(wei))
	}
}

func TestNormalizeEther(t *testing.T) {
	got, err := NormalizeEther("1.50")
	require.NoError(t, err)
	assert.Equal(t, "1.5", got)
}

func TestNetworkID(t *testing.T) {
	id, err := ParseNetworkID("0xAA36A7")
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id.Int64())
	assert.Equal(t, "0xaa36a7", FormatNetworkID(id))

	norm, err := NormalizeNetworkID("11155111")
	require.NoError(t, err)
	assert.Equal(t, "0xaa36a7", norm)

	for _, bad := range []string{"", "0x", "zz", "0", "-5"} {
		_, err := ParseNetworkID(bad)
		assert.Error(t, err, bad)
	}
}
