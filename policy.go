package goPassword

import (
	"fmt"

	"github.com/MrEthical07/goPassword/password"
)

// PolicyConfig is the raw cost input. A zero field selects the primitive's
// default for that field.
type PolicyConfig struct {
	// MemLimit is the memory cost in bytes.
	MemLimit uint64
	// OpsLimit is the number of passes.
	OpsLimit uint64
}

// Policy is a validated, immutable pair of cost parameters.
type Policy struct {
	memLimit uint64
	opsLimit uint64
}

// InteractiveConfig returns the cost for online logins (64 MiB, 2 passes).
func InteractiveConfig() PolicyConfig {
	return PolicyConfig{MemLimit: password.MemLimitInteractive, OpsLimit: password.OpsLimitInteractive}
}

// ModerateConfig returns a stronger cost (256 MiB, 3 passes).
func ModerateConfig() PolicyConfig {
	return PolicyConfig{MemLimit: password.MemLimitModerate, OpsLimit: password.OpsLimitModerate}
}

// SensitiveConfig returns the strongest preset (1 GiB, 4 passes). A single
// hash can take several seconds.
func SensitiveConfig() PolicyConfig {
	return PolicyConfig{MemLimit: password.MemLimitSensitive, OpsLimit: password.OpsLimitSensitive}
}

// NewPolicy validates cfg against the default Argon2 primitive's limits.
func NewPolicy(cfg PolicyConfig) (Policy, error) {
	return newPolicy(cfg, password.DefaultLimits())
}

func newPolicy(cfg PolicyConfig, limits Limits) (Policy, error) {
	mem := cfg.MemLimit
	if mem == 0 {
		mem = limits.MemLimitDefault
	}
	ops := cfg.OpsLimit
	if ops == 0 {
		ops = limits.OpsLimitDefault
	}

	switch {
	case mem < limits.MemLimitMin:
		return Policy{}, &PolicyError{Field: "memlimit", Bound: BoundMemLimitMin, Value: mem, Limit: limits.MemLimitMin}
	case mem > limits.MemLimitMax:
		return Policy{}, &PolicyError{Field: "memlimit", Bound: BoundMemLimitMax, Value: mem, Limit: limits.MemLimitMax}
	case ops < limits.OpsLimitMin:
		return Policy{}, &PolicyError{Field: "opslimit", Bound: BoundOpsLimitMin, Value: ops, Limit: limits.OpsLimitMin}
	case ops > limits.OpsLimitMax:
		return Policy{}, &PolicyError{Field: "opslimit", Bound: BoundOpsLimitMax, Value: ops, Limit: limits.OpsLimitMax}
	}

	return Policy{memLimit: mem, opsLimit: ops}, nil
}

// MemLimit returns the memory cost in bytes.
func (p Policy) MemLimit() uint64 { return p.memLimit }

// OpsLimit returns the number of passes.
func (p Policy) OpsLimit() uint64 { return p.opsLimit }

// IsZero reports whether p was never validated.
func (p Policy) IsZero() bool {
	return p.memLimit == 0 && p.opsLimit == 0
}

// StrongerThan reports whether p raises either cost above other without
// lowering the other one.
func (p Policy) StrongerThan(other Policy) bool {
	if p.memLimit < other.memLimit || p.opsLimit < other.opsLimit {
		return false
	}
	return p.memLimit > other.memLimit || p.opsLimit > other.opsLimit
}

// Config returns p as a PolicyConfig.
func (p Policy) Config() PolicyConfig {
	return PolicyConfig{MemLimit: p.memLimit, OpsLimit: p.opsLimit}
}

func (p Policy) String() string {
	return fmt.Sprintf("memlimit=%d opslimit=%d", p.memLimit, p.opsLimit)
}
