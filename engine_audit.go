package goPassword

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// AuditErrorCode is the stable error label written to audit events.
type AuditErrorCode string

const (
	auditErrCancelled    AuditErrorCode = "cancelled"
	auditErrEngineClosed AuditErrorCode = "engine_closed"
	auditErrInvalidInput AuditErrorCode = "invalid_input"
	auditErrPrimitive    AuditErrorCode = "primitive_failure"
	auditErrUnrecognized AuditErrorCode = "unrecognized_hash"
	auditErrInternal     AuditErrorCode = "internal_error"
)

// finishHash records metrics, logs and audit for a finished hash job.
func (e *Engine) finishHash(id uuid.UUID, mode string, err error) {
	switch {
	case err == nil:
		e.metricInc(MetricHashCompleted)
		e.emitAudit(AuditEventHash, id, mode, "", nil)
	case errors.Is(err, ErrCancelled):
		e.logger.Debug().Str("job_id", id.String()).Str("op", "hash").Str("mode", mode).Msg("job cancelled")
		e.emitAudit(AuditEventCancel, id, mode, "", err)
	default:
		e.metricInc(MetricHashFailed)
		e.logger.Warn().Err(err).Str("job_id", id.String()).Str("op", "hash").Str("mode", mode).Msg("hash failed")
		e.emitAudit(AuditEventHash, id, mode, "", err)
	}
}

// finishVerify records metrics, logs and audit for a finished verify job.
func (e *Engine) finishVerify(id uuid.UUID, mode string, outcome Outcome, err error) {
	switch {
	case err == nil:
		switch outcome {
		case Valid:
			e.metricInc(MetricVerifyValid)
		case ValidNeedsRehash:
			e.metricInc(MetricVerifyNeedsRehash)
		case InvalidUnrecognizedHash:
			e.metricInc(MetricVerifyUnrecognized)
		default:
			e.metricInc(MetricVerifyInvalid)
		}
		e.logger.Debug().Str("job_id", id.String()).Str("op", "verify").Str("outcome", outcome.String()).Msg("verify finished")
		e.emitAudit(AuditEventVerify, id, mode, outcome.String(), nil)
	case errors.Is(err, ErrCancelled):
		e.logger.Debug().Str("job_id", id.String()).Str("op", "verify").Str("mode", mode).Msg("job cancelled")
		e.emitAudit(AuditEventCancel, id, mode, "", err)
	default:
		e.metricInc(MetricVerifyFailed)
		e.logger.Warn().Err(err).Str("job_id", id.String()).Str("op", "verify").Str("mode", mode).Msg("verify failed")
		e.emitAudit(AuditEventVerify, id, mode, "", err)
	}
}

func (e *Engine) emitAudit(eventType string, id uuid.UUID, mode, outcome string, err error) {
	if e == nil || e.audit == nil {
		return
	}

	success := err == nil
	if eventType == AuditEventVerify {
		success = err == nil && (outcome == Valid.String() || outcome == ValidNeedsRehash.String())
	}
	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		JobID:     id.String(),
		Mode:      mode,
		Outcome:   outcome,
		Success:   success,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(context.Background(), event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrEngineClosed):
		return auditErrEngineClosed
	case errors.Is(err, ErrCancelled):
		return auditErrCancelled
	case errors.Is(err, ErrInvalidInput):
		return auditErrInvalidInput
	case errors.Is(err, ErrUnrecognizedHash):
		return auditErrUnrecognized
	case errors.Is(err, ErrPrimitive):
		return auditErrPrimitive
	default:
		return auditErrInternal
	}
}
