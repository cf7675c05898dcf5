// Package audit provides the asynchronous audit event dispatcher and the
// built-in sinks (no-op, channel, JSON lines, Redis stream).
//
// # Architecture boundaries
//
// The engine builds events and hands them to a Dispatcher, which forwards
// them to a Sink on its own goroutine. Sinks never see secrets.
//
// # What this package must NOT do
//
//   - Block the hashing path when DropIfFull is set.
//   - Import goPassword or any sibling package.
package audit
