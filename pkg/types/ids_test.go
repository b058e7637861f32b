package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDerivePeerID 测试从公钥派生
func TestDerivePeerID(t *testing.T) {
	id := DerivePeerID([]byte("public key bytes"))
	assert.False(t, id.IsEmpty())

	// 派生是确定性的
	assert.Equal(t, id, DerivePeerID([]byte("public key bytes")))
	assert.NotEqual(t, id, DerivePeerID([]byte("other key")))
}

// TestParsePeerID 测试解析
func TestParsePeerID(t *testing.T) {
	id := DerivePeerID([]byte("public key bytes"))

	parsed, err := ParsePeerID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParsePeerID("")
	assert.ErrorIs(t, err, ErrInvalidPeerID)

	_, err = ParsePeerID("0OIl-not-base58")
	assert.ErrorIs(t, err, ErrInvalidPeerID)

	// 长度不是 32 字节
	_, err = ParsePeerID(Base58Encode([]byte("short")))
	assert.ErrorIs(t, err, ErrInvalidPeerID)
}

// TestPeerID_ShortString 测试日志用短标识
func TestPeerID_ShortString(t *testing.T) {
	id := DerivePeerID([]byte("public key bytes"))
	assert.Len(t, id.ShortString(), 8)
	assert.Equal(t, "abc", PeerID("abc").ShortString())
}

// TestBase58_RoundTrip 测试编解码往返
func TestBase58_RoundTrip(t *testing.T) {
	cases := [][]byte{
		[]byte("hello"),
		{0, 0, 1, 2, 3},
		{0xFF, 0xFE},
	}
	for _, c := range cases {
		decoded, err := Base58Decode(Base58Encode(c))
		require.NoError(t, err)
		assert.Equal(t, c, decoded)
	}

	_, err := Base58Decode("0invalid")
	assert.ErrorIs(t, err, ErrInvalidBase58Char)
}
