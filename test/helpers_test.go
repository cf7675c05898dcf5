//go:build integration
// +build integration

package test

import (
	"testing"

	goPassword "github.com/MrEthical07/goPassword"
	"github.com/MrEthical07/goPassword/password"
)

func newIntegrationEngine(t *testing.T, sink goPassword.AuditSink) *goPassword.Engine {
	t.Helper()

	cfg := goPassword.DefaultConfig()
	cfg.Policy = goPassword.PolicyConfig{MemLimit: password.MemLimitMin, OpsLimit: password.OpsLimitMin}
	cfg.Scheduler.Parallelism = 2
	cfg.Audit.Enabled = true
	cfg.Audit.DropIfFull = false

	engine, err := goPassword.New().WithConfig(cfg).WithAuditSink(sink).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}
