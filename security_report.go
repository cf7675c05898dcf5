package goPassword

// SecurityReport summarises the engine's effective security settings.
type SecurityReport struct {
	MemLimit          uint64
	OpsLimit          uint64
	MemoryKiB         uint64
	Parallelism       int
	Unbounded         bool
	HashBytes         int
	PasswordBytesMax  uint64
	BelowInteractive  bool
	AuditEnabled      bool
	MetricsEnabled    bool
	LatencyHistograms bool
}

func (e *Engine) SecurityReport() SecurityReport {
	if e == nil {
		return SecurityReport{}
	}

	interactive := InteractiveConfig()
	below := e.policy.MemLimit() < interactive.MemLimit || e.policy.OpsLimit() < interactive.OpsLimit

	return SecurityReport{
		MemLimit:          e.policy.MemLimit(),
		OpsLimit:          e.policy.OpsLimit(),
		MemoryKiB:         e.policy.MemLimit() / 1024,
		Parallelism:       e.config.Scheduler.Parallelism,
		Unbounded:         e.config.Scheduler.Parallelism == 0,
		HashBytes:         e.limits.HashBytes,
		PasswordBytesMax:  e.limits.PasswordBytesMax,
		BelowInteractive:  below,
		AuditEnabled:      e.audit != nil,
		MetricsEnabled:    e.metrics.Enabled(),
		LatencyHistograms: e.metrics.LatencyEnabled(),
	}
}
