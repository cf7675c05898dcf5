package password

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Algorithm names the Argon2 variant encoded in a hash.
type Algorithm string

const (
	// AlgorithmArgon2id is the variant produced by [Argon2.Hash].
	AlgorithmArgon2id Algorithm = "argon2id"
	// AlgorithmArgon2i is recognized for verification but deprecated; hashes
	// using it always need a rehash.
	AlgorithmArgon2i Algorithm = "argon2i"
)

// Params carries the cost parameters embedded in an encoded hash.
type Params struct {
	Algorithm  Algorithm
	Version    int
	MemoryKiB  uint32
	Passes     uint32
	Lanes      uint8
	SaltLength int
	KeyLength  int
}

// MemLimit returns the memory cost in bytes.
func (p Params) MemLimit() uint64 {
	return uint64(p.MemoryKiB) * 1024
}

// OpsLimit returns the number of passes.
func (p Params) OpsLimit() uint64 {
	return uint64(p.Passes)
}

type decoded struct {
	params Params
	salt   []byte
	key    []byte
}

// Decode parses the parameters embedded in hash without verifying it.
func Decode(hash []byte) (Params, error) {
	d, err := decode(hash)
	if err != nil {
		return Params{}, err
	}
	return d.params, nil
}

func decode(hash []byte) (*decoded, error) {
	encoded := bytes.TrimRight(hash, "\x00")
	if bytes.IndexByte(encoded, 0) >= 0 {
		return nil, fmt.Errorf("%w: embedded NUL byte", ErrUnrecognizedHash)
	}

	parts := strings.Split(string(encoded), "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, fmt.Errorf("%w: expected 5 PHC segments, got %d", ErrUnrecognizedHash, len(parts)-1)
	}

	var alg Algorithm
	switch parts[1] {
	case string(AlgorithmArgon2id):
		alg = AlgorithmArgon2id
	case string(AlgorithmArgon2i):
		alg = AlgorithmArgon2i
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrUnrecognizedHash, parts[1])
	}

	if !strings.HasPrefix(parts[2], "v=") {
		return nil, fmt.Errorf("%w: missing version", ErrUnrecognizedHash)
	}
	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid version", ErrUnrecognizedHash)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrUnrecognizedHash, version)
	}

	memory, passes, threads, err := parseCost(parts[3])
	if err != nil {
		return nil, err
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid salt encoding", ErrUnrecognizedHash)
	}
	if len(salt) < minSaltLength {
		return nil, fmt.Errorf("%w: salt shorter than %d bytes", ErrUnrecognizedHash, minSaltLength)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key encoding", ErrUnrecognizedHash)
	}
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("%w: key shorter than %d bytes", ErrUnrecognizedHash, minKeyLength)
	}

	return &decoded{
		params: Params{
			Algorithm:  alg,
			Version:    version,
			MemoryKiB:  memory,
			Passes:     passes,
			Lanes:      threads,
			SaltLength: len(salt),
			KeyLength:  len(key),
		},
		salt: salt,
		key:  key,
	}, nil
}

// parseCost parses "m=<KiB>,t=<passes>,p=<lanes>". Keys must appear in that
// order, exactly once.
func parseCost(segment string) (uint32, uint32, uint8, error) {
	pairs := strings.Split(segment, ",")
	if len(pairs) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: invalid parameter segment", ErrUnrecognizedHash)
	}

	values := [3]uint64{}
	for i, want := range [3]string{"m", "t", "p"} {
		key, raw, ok := strings.Cut(pairs[i], "=")
		if !ok || key != want {
			return 0, 0, 0, fmt.Errorf("%w: expected %s= parameter", ErrUnrecognizedHash, want)
		}
		v, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || v == 0 {
			return 0, 0, 0, fmt.Errorf("%w: invalid %s parameter", ErrUnrecognizedHash, want)
		}
		values[i] = v
	}

	memory, passes, threads := values[0], values[1], values[2]
	if threads > 255 {
		return 0, 0, 0, fmt.Errorf("%w: invalid p parameter", ErrUnrecognizedHash)
	}
	if memory < 8*threads {
		return 0, 0, 0, fmt.Errorf("%w: m must be at least 8*p", ErrUnrecognizedHash)
	}
	return uint32(memory), uint32(passes), uint8(threads), nil
}
