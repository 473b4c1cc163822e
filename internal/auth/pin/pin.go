// Package pin hashes and verifies member PINs with Argon2id.
package pin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// costParams are the Argon2id work factors baked into each encoded hash,
// so stored PINs survive future retuning.
type costParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

var defaultCost = costParams{memory: 64 * 1024, time: 1, threads: 4}

const (
	saltLen = 16
	keyLen  = 32
)

// Hash returns the Argon2id hash stored against a member.
func Hash(rawPIN string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest := argon2.IDKey([]byte(rawPIN), salt, defaultCost.time, defaultCost.memory, defaultCost.threads, keyLen)
	return encodePIN(defaultCost, salt, digest), nil
}

// Verify checks a PIN against an encoded hash in constant time. Any parse
// failure verifies false; it never errors, so callers cannot distinguish a
// bad PIN from a malformed hash.
func Verify(rawPIN, encoded string) bool {
	cost, salt, digest, ok := decodePIN(encoded)
	if !ok {
		return false
	}
	check := argon2.IDKey([]byte(rawPIN), salt, cost.time, cost.memory, cost.threads, uint32(len(digest)))
	return subtle.ConstantTimeCompare(digest, check) == 1
}

func encodePIN(cost costParams, salt, digest []byte) string {
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		cost.memory, cost.time, cost.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
}

func decodePIN(encoded string) (costParams, []byte, []byte, bool) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" || parts[2] != "v=19" {
		return costParams{}, nil, nil, false
	}

	cost, ok := decodeCost(parts[3])
	if !ok {
		return costParams{}, nil, nil, false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return costParams{}, nil, nil, false
	}
	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return costParams{}, nil, nil, false
	}
	return cost, salt, digest, true
}

func decodeCost(section string) (costParams, bool) {
	fields := strings.Split(section, ",")
	if len(fields) != 3 {
		return costParams{}, false
	}

	memory, ok := decodeCostField(fields[0], "m=", 32)
	if !ok {
		return costParams{}, false
	}
	timeCost, ok := decodeCostField(fields[1], "t=", 32)
	if !ok {
		return costParams{}, false
	}
	threads, ok := decodeCostField(fields[2], "p=", 8)
	if !ok {
		return costParams{}, false
	}
	return costParams{memory: uint32(memory), time: uint32(timeCost), threads: uint8(threads)}, true
}

func decodeCostField(field, prefix string, bits int) (uint64, bool) {
	raw, ok := strings.CutPrefix(field, prefix)
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, bits)
	if err != nil {
		return 0, false
	}
	return value, true
}
