package pin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

func TestHashAndVerify(t *testing.T) {
	encoded, err := Hash("4821")
	require.NoError(t, err)
	assert.Contains(t, encoded, "$argon2id$v=19$")

	assert.True(t, Verify("4821", encoded))
	assert.False(t, Verify("4822", encoded))
	assert.False(t, Verify("", encoded))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("4821")
	require.NoError(t, err)
	second, err := Hash("4821")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestVerifyHonorsEncodedCost(t *testing.T) {
	// a hash minted under older, lighter work factors must still verify
	salt := []byte("0123456789abcdef")
	cost := costParams{memory: 32 * 1024, time: 2, threads: 1}
	digest := argon2.IDKey([]byte("4821"), salt, cost.time, cost.memory, cost.threads, keyLen)

	encoded := encodePIN(cost, salt, digest)
	assert.True(t, Verify("4821", encoded))
	assert.False(t, Verify("4822", encoded))
}

func TestVerifyMalformed(t *testing.T) {
	assert.False(t, Verify("4821", ""))
	assert.False(t, Verify("4821", "$argon2id$v=19$m=65536,t=1,p=4$bad"))
	assert.False(t, Verify("4821", "plaintext"))
}
