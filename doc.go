// Package goPassword provides a password-hashing policy engine around a
// memory-hard primitive (Argon2id by default).
//
// The engine enforces cost-parameter bounds, caps how many hashing jobs run
// at once, lets callers cancel work that has not started yet and reports when
// a stored hash was produced with weaker parameters than the current policy.
//
// Every operation is offered three ways over one code path: blocking
// ([Engine.Hash], [Engine.Verify]), future ([Engine.HashAsync],
// [Engine.VerifyAsync]) and callback ([Engine.HashFunc], [Engine.VerifyFunc]).
// Context-aware variants wait on a future and cancel it when the context ends.
// Engine methods are safe for concurrent use after [Builder.Build].
//
// # Architecture boundaries
//
// goPassword is the public surface. Admission control lives in
// internal/scheduler, the primitive in password/, owned secret buffers in
// secret/, and audit/metrics plumbing under internal/.
//
// # What this package must NOT do
//
//   - Log, audit or retain plaintext passwords.
//   - Keep package-level mutable state; all scheduler state belongs to an Engine.
//   - Report a verification mismatch as an error. Mismatches are [Outcome] values.
//
// # Concurrency contract
//
// Blocking calls run on the caller's goroutine and are not subject to the
// parallelism limit. Asynchronous jobs are admitted in submission order and
// complete in finish order. A cancelled job that already started still
// delivers its result.
package goPassword
