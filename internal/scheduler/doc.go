// Package scheduler bounds how many hashing jobs run at once.
//
// Jobs are admitted in submission order. Each admitted job runs on its own
// goroutine; when it returns, its slot is released and the next queued job is
// admitted before the finished job's result is delivered. A queued job can be
// cancelled; an admitted one cannot.
//
// All scheduler state lives behind one mutex owned by the Scheduler value.
// There is no package-level state.
package scheduler
