package goPassword

// Outcome is the classified result of a verification. Outcomes are values,
// not errors: a wrong password is [Invalid] with a nil error.
type Outcome uint8

const (
	// Invalid means the hash is well formed but the password does not match.
	Invalid Outcome = iota
	// Valid means the password matches and the hash meets the current policy.
	Valid
	// ValidNeedsRehash means the password matches but the hash was produced
	// with weaker parameters; callers should store a fresh hash.
	ValidNeedsRehash
	// InvalidUnrecognizedHash means the hash bytes are not a format the
	// primitive understands.
	InvalidUnrecognizedHash
)

func (o Outcome) String() string {
	switch o {
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	case ValidNeedsRehash:
		return "valid_needs_rehash"
	case InvalidUnrecognizedHash:
		return "invalid_unrecognized_hash"
	default:
		return "unknown"
	}
}

// IsValid reports whether the password matched.
func (o Outcome) IsValid() bool {
	return o == Valid || o == ValidNeedsRehash
}

// NeedsRehash reports whether the caller should replace the stored hash.
func (o Outcome) NeedsRehash() bool {
	return o == ValidNeedsRehash
}

func classify(recognized, verifies, weaker bool) Outcome {
	switch {
	case !recognized:
		return InvalidUnrecognizedHash
	case !verifies:
		return Invalid
	case weaker:
		return ValidNeedsRehash
	default:
		return Valid
	}
}
