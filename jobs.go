package goPassword

import (
	"errors"

	"github.com/MrEthical07/goPassword/internal/scheduler"
	"github.com/MrEthical07/goPassword/secret"
	"github.com/google/uuid"
)

// Submission modes recorded in logs and audit events.
const (
	modeBlocking = "blocking"
	modeAsync    = "async"
	modeCallback = "callback"
	modeContext  = "context"
)

// hashJob owns a copy of the password for the lifetime of the job.
type hashJob struct {
	engine   *Engine
	task     *Task[[]byte]
	mode     string
	policy   Policy
	password *secret.Buffer

	result []byte
	err    error
}

func (j *hashJob) ID() uuid.UUID { return j.task.id }

func (j *hashJob) Execute() {
	defer j.password.Destroy()
	j.result, j.err = j.engine.runHash(j.password.Bytes(), j.policy)
}

func (j *hashJob) Complete() {
	j.engine.finishHash(j.task.id, j.mode, j.err)
	j.task.resolve(j.result, j.err)
}

func (j *hashJob) Abort(err error) {
	j.password.Destroy()
	err = abortError("hash", err)
	j.engine.finishHash(j.task.id, j.mode, err)
	j.task.resolve(nil, err)
}

type verifyJob struct {
	engine   *Engine
	task     *Task[Outcome]
	mode     string
	policy   Policy
	password *secret.Buffer
	hash     *secret.Buffer

	outcome Outcome
	err     error
}

func (j *verifyJob) ID() uuid.UUID { return j.task.id }

func (j *verifyJob) Execute() {
	defer j.release()
	j.outcome, j.err = j.engine.runVerify(j.password.Bytes(), j.hash.Bytes(), j.policy)
}

func (j *verifyJob) Complete() {
	j.engine.finishVerify(j.task.id, j.mode, j.outcome, j.err)
	j.task.resolve(j.outcome, j.err)
}

func (j *verifyJob) Abort(err error) {
	j.release()
	err = abortError("verify", err)
	j.engine.finishVerify(j.task.id, j.mode, Invalid, err)
	j.task.resolve(Invalid, err)
}

func (j *verifyJob) release() {
	j.password.Destroy()
	j.hash.Destroy()
}

// abortError maps scheduler abort reasons onto the public taxonomy.
func abortError(op string, err error) error {
	if errors.Is(err, scheduler.ErrJobPanicked) {
		return &PrimitiveError{Op: op, Err: err}
	}
	return err
}
