package goPassword

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goPassword/secret"
)

// Verify checks password against hash on the calling goroutine. A mismatch is
// reported as [Invalid] with a nil error; only input and primitive failures
// are errors.
func (e *Engine) Verify(password, hash []byte) (Outcome, error) {
	if err := e.ready(); err != nil {
		return Invalid, err
	}
	if err := e.checkVerifyInput(password, hash); err != nil {
		e.metricInc(MetricInputRejected)
		return Invalid, err
	}
	e.metricInc(MetricBlockingVerify)

	outcome, err := e.runVerify(password, hash, e.policy)
	e.finishVerify(newJobID(), modeBlocking, outcome, err)
	return outcome, err
}

// VerifyAsync submits a verify job and returns its future. Password and hash
// are copied. A hash without a recognized algorithm tag resolves immediately
// to [InvalidUnrecognizedHash] without taking a slot.
func (e *Engine) VerifyAsync(password, hash []byte) (*Task[Outcome], error) {
	return e.submitVerify(password, hash, modeAsync, nil)
}

// VerifyFunc submits a verify job and calls fn exactly once with the outcome.
func (e *Engine) VerifyFunc(password, hash []byte, fn func(Outcome, error)) (Handle, error) {
	if fn == nil {
		return Handle{}, &InputError{Field: "callback", Reason: "must not be nil"}
	}
	task, err := e.submitVerify(password, hash, modeCallback, fn)
	if err != nil {
		return Handle{}, err
	}
	return task.Handle(), nil
}

// VerifyContext submits a verify job and waits for it, cancelling a still
// queued job when ctx ends.
func (e *Engine) VerifyContext(ctx context.Context, password, hash []byte) (Outcome, error) {
	task, err := e.submitVerify(password, hash, modeContext, nil)
	if err != nil {
		return Invalid, err
	}
	return awaitTask(ctx, task)
}

func (e *Engine) checkVerifyInput(password, hash []byte) error {
	if err := e.checkPassword(password); err != nil {
		return err
	}
	return e.checkHash(hash)
}

func (e *Engine) submitVerify(password, hash []byte, mode string, cb func(Outcome, error)) (*Task[Outcome], error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.checkVerifyInput(password, hash); err != nil {
		e.metricInc(MetricInputRejected)
		return nil, err
	}

	task := newTask(e, cb)
	e.metricInc(MetricVerifySubmitted)

	if !e.primitive.Recognized(hash) {
		e.finishVerify(task.id, mode, InvalidUnrecognizedHash, nil)
		task.resolveDetached(InvalidUnrecognizedHash, nil)
		return task, nil
	}

	job := &verifyJob{
		engine:   e,
		task:     task,
		mode:     mode,
		policy:   e.policy,
		password: secret.Copy(password),
		hash:     secret.Copy(hash),
	}
	ticket, err := e.sched.Submit(job)
	if err != nil {
		job.release()
		return nil, submitError(err)
	}
	task.ticket.Store(ticket)
	return task, nil
}

// runVerify is the single verification path shared by every calling
// convention.
func (e *Engine) runVerify(password, hash []byte, p Policy) (outcome Outcome, err error) {
	defer recoverPrimitive("verify", &err)

	if !e.primitive.Recognized(hash) {
		return classify(false, false, false), nil
	}

	start := time.Now()
	ok, err := e.primitive.Verify(hash, password)
	e.metricObserve(MetricPrimitiveLatency, time.Since(start))
	if err != nil {
		if errors.Is(err, ErrUnrecognizedHash) {
			return InvalidUnrecognizedHash, nil
		}
		return Invalid, &PrimitiveError{Op: "verify", Err: err}
	}

	weaker := false
	if ok {
		weaker, err = e.primitive.NeedsRehash(hash, p.OpsLimit(), p.MemLimit())
		if err != nil {
			if errors.Is(err, ErrUnrecognizedHash) {
				return InvalidUnrecognizedHash, nil
			}
			return Invalid, &PrimitiveError{Op: "needs_rehash", Err: err}
		}
	}

	return classify(true, ok, weaker), nil
}
