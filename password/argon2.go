package password

import (
	"bytes"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength    uint32 = 16
	keyLength     uint32 = 32
	lanes         uint8  = 1
	minSaltLength        = 8
	minKeyLength         = 16
)

var (
	// ErrUnrecognizedHash is returned when a hash buffer does not carry a
	// supported algorithm tag or its embedded parameters cannot be parsed.
	ErrUnrecognizedHash = errors.New("password: unrecognized hash format")

	// ErrInvalidParams is returned when cost parameters or input lengths fall
	// outside [DefaultLimits].
	ErrInvalidParams = errors.New("password: invalid parameters")
)

var (
	prefixArgon2id = []byte("$argon2id$")
	prefixArgon2i  = []byte("$argon2i$")
)

// Argon2 is the default hashing primitive. It is immutable and safe for
// concurrent use.
type Argon2 struct {
	rand io.Reader
}

// NewArgon2 returns an Argon2 primitive reading salts from crypto/rand.
func NewArgon2() *Argon2 {
	return &Argon2{rand: rand.Reader}
}

// NewArgon2WithRand returns an Argon2 primitive reading salts from r. It
// exists for deterministic tests and fault injection.
func NewArgon2WithRand(r io.Reader) *Argon2 {
	if r == nil {
		r = rand.Reader
	}
	return &Argon2{rand: r}
}

// Limits returns the bounds enforced by this primitive.
func (a *Argon2) Limits() Limits {
	return DefaultLimits()
}

// Recognized reports whether hash starts with a supported algorithm tag. It
// does not validate the rest of the encoding.
func (a *Argon2) Recognized(hash []byte) bool {
	return bytes.HasPrefix(hash, prefixArgon2id) || bytes.HasPrefix(hash, prefixArgon2i)
}

// Hash derives an Argon2id hash of password and returns it encoded into a
// fresh buffer of exactly [HashBytes] bytes.
func (a *Argon2) Hash(password []byte, opslimit, memlimit uint64) ([]byte, error) {
	if err := checkCost(opslimit, memlimit); err != nil {
		return nil, err
	}
	if uint64(len(password)) >= PasswordBytesMax {
		return nil, fmt.Errorf("%w: password must be shorter than %d bytes", ErrInvalidParams, PasswordBytesMax)
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(a.rand, salt); err != nil {
		return nil, fmt.Errorf("password: read salt: %w", err)
	}

	memKiB := uint32(memlimit / 1024)
	passes := uint32(opslimit)
	key := argon2.IDKey(password, salt, passes, memKiB, lanes, keyLength)
	defer clear(key)

	out := make([]byte, 0, HashBytes)
	out = append(out, prefixArgon2id...)
	out = append(out, "v="...)
	out = strconv.AppendInt(out, argon2.Version, 10)
	out = append(out, "$m="...)
	out = strconv.AppendUint(out, uint64(memKiB), 10)
	out = append(out, ",t="...)
	out = strconv.AppendUint(out, uint64(passes), 10)
	out = append(out, ",p="...)
	out = strconv.AppendUint(out, uint64(lanes), 10)
	out = append(out, '$')
	out = base64.RawStdEncoding.AppendEncode(out, salt)
	out = append(out, '$')
	out = base64.RawStdEncoding.AppendEncode(out, key)

	if len(out) > HashBytes {
		clear(out)
		return nil, fmt.Errorf("password: encoded hash exceeds %d bytes", HashBytes)
	}
	// Pad to the fixed size with NUL bytes.
	return out[:HashBytes], nil
}

// Verify reports whether password matches hash. The comparison is constant
// time. A malformed hash yields an error wrapping [ErrUnrecognizedHash].
func (a *Argon2) Verify(hash, password []byte) (bool, error) {
	d, err := decode(hash)
	if err != nil {
		return false, err
	}

	var computed []byte
	switch d.params.Algorithm {
	case AlgorithmArgon2id:
		computed = argon2.IDKey(password, d.salt, d.params.Passes, d.params.MemoryKiB, d.params.Lanes, uint32(len(d.key)))
	case AlgorithmArgon2i:
		computed = argon2.Key(password, d.salt, d.params.Passes, d.params.MemoryKiB, d.params.Lanes, uint32(len(d.key)))
	default:
		return false, fmt.Errorf("%w: algorithm %q", ErrUnrecognizedHash, d.params.Algorithm)
	}
	defer clear(computed)

	return subtle.ConstantTimeCompare(computed, d.key) == 1, nil
}

// NeedsRehash reports whether hash was produced with weaker settings than
// opslimit/memlimit. Argon2i hashes always need a rehash. Hashes with equal or
// stronger parameters do not.
func (a *Argon2) NeedsRehash(hash []byte, opslimit, memlimit uint64) (bool, error) {
	if err := checkCost(opslimit, memlimit); err != nil {
		return false, err
	}
	p, err := Decode(hash)
	if err != nil {
		return false, err
	}
	if p.Algorithm != AlgorithmArgon2id {
		return true, nil
	}
	return uint64(p.MemoryKiB) < memlimit/1024 || uint64(p.Passes) < opslimit, nil
}

func checkCost(opslimit, memlimit uint64) error {
	if memlimit < MemLimitMin || memlimit > MemLimitMax {
		return fmt.Errorf("%w: memlimit %d outside [%d, %d]", ErrInvalidParams, memlimit, MemLimitMin, MemLimitMax)
	}
	if opslimit < OpsLimitMin || opslimit > OpsLimitMax {
		return fmt.Errorf("%w: opslimit %d outside [%d, %d]", ErrInvalidParams, opslimit, OpsLimitMin, OpsLimitMax)
	}
	return nil
}
