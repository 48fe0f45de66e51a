package coupon

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateTokens(t *testing.T) {
	couponCode, secretCode, err := GenerateTokens()
	require.NoError(t, err)

	assert.Len(t, couponCode, 16)
	assert.Len(t, secretCode, 16)
	assert.NotEqual(t, couponCode, secretCode)

	_, err = hex.DecodeString(couponCode)
	assert.NoError(t, err)
	_, err = hex.DecodeString(secretCode)
	assert.NoError(t, err)
}

func TestSealDeterministic(t *testing.T) {
	a, err := Seal("1a2b3c4d5e6f7a8b", "ffeeddccbbaa0099")
	require.NoError(t, err)
	b, err := Seal("1a2b3c4d5e6f7a8b", "ffeeddccbbaa0099")
	require.NoError(t, err)

	// Issue and redeem must compute identical ciphertext for the lookup
	// to find the stored reward.
	assert.Equal(t, a, b)

	_, err = hex.DecodeString(a)
	assert.NoError(t, err)
}

func TestSealVariesWithInputs(t *testing.T) {
	base, err := Seal("1a2b3c4d5e6f7a8b", "ffeeddccbbaa0099")
	require.NoError(t, err)

	otherCoupon, err := Seal("0000000000000000", "ffeeddccbbaa0099")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherCoupon)

	otherSecret, err := Seal("1a2b3c4d5e6f7a8b", "0000000000000000")
	require.NoError(t, err)
	assert.NotEqual(t, base, otherSecret)
}
