package password

import "math"

const (
	// HashBytes is the fixed size of an encoded hash buffer.
	HashBytes = 128

	// PasswordBytesMin is the smallest accepted password length.
	PasswordBytesMin uint64 = 0
	// PasswordBytesMax is the exclusive upper bound on password length.
	PasswordBytesMax uint64 = math.MaxUint32

	// MemLimitMin is the smallest accepted memory cost in bytes.
	MemLimitMin uint64 = 8192
	// MemLimitMax is the largest accepted memory cost in bytes.
	MemLimitMax uint64 = 4398046510080
	// MemLimitInteractive is the memory cost for interactive logins (64 MiB).
	MemLimitInteractive uint64 = 64 << 20
	// MemLimitModerate is the memory cost for moderately sensitive data (256 MiB).
	MemLimitModerate uint64 = 256 << 20
	// MemLimitSensitive is the memory cost for highly sensitive data (1 GiB).
	MemLimitSensitive uint64 = 1 << 30

	// OpsLimitMin is the smallest accepted number of passes.
	OpsLimitMin uint64 = 1
	// OpsLimitMax is the largest accepted number of passes.
	OpsLimitMax uint64 = math.MaxUint32
	// OpsLimitInteractive is the pass count for interactive logins.
	OpsLimitInteractive uint64 = 2
	// OpsLimitModerate is the pass count for moderately sensitive data.
	OpsLimitModerate uint64 = 3
	// OpsLimitSensitive is the pass count for highly sensitive data.
	OpsLimitSensitive uint64 = 4
)

// Limits describes the bounds a primitive enforces. Callers validate against
// these values instead of assuming constants, since they depend on the
// primitive version.
type Limits struct {
	HashBytes        int
	PasswordBytesMin uint64
	PasswordBytesMax uint64
	MemLimitMin      uint64
	MemLimitMax      uint64
	MemLimitDefault  uint64
	OpsLimitMin      uint64
	OpsLimitMax      uint64
	OpsLimitDefault  uint64
}

// DefaultLimits returns the bounds of the Argon2 primitive in this package.
func DefaultLimits() Limits {
	return Limits{
		HashBytes:        HashBytes,
		PasswordBytesMin: PasswordBytesMin,
		PasswordBytesMax: PasswordBytesMax,
		MemLimitMin:      MemLimitMin,
		MemLimitMax:      MemLimitMax,
		MemLimitDefault:  MemLimitInteractive,
		OpsLimitMin:      OpsLimitMin,
		OpsLimitMax:      OpsLimitMax,
		OpsLimitDefault:  OpsLimitInteractive,
	}
}
