// Package secret provides owned byte buffers that are zeroed when released.
//
// Go cannot guarantee that no other copy of a value exists (the runtime may
// move stacks and the garbage collector does not scrub freed memory), so
// zeroing is best-effort. What Buffer does guarantee is that the copy it owns
// is overwritten on every exit path that goes through Destroy or Scoped.
package secret

import "sync"

// Buffer owns a copy of sensitive bytes. The zero value is an empty,
// already-destroyed buffer. A Buffer is safe for concurrent Destroy calls but
// Bytes must not be used after Destroy.
type Buffer struct {
	mu        sync.Mutex
	b         []byte
	destroyed bool
}

// Copy returns a Buffer holding a private copy of src. The caller may zero or
// reuse src as soon as Copy returns.
func Copy(src []byte) *Buffer {
	b := make([]byte, len(src))
	copy(b, src)
	return &Buffer{b: b}
}

// Adopt takes ownership of b without copying. The caller must not use b
// afterwards.
func Adopt(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Bytes returns the underlying slice. It returns nil after Destroy.
func (s *Buffer) Bytes() []byte {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return nil
	}
	return s.b
}

// Len returns the number of owned bytes, or 0 after Destroy.
func (s *Buffer) Len() int {
	return len(s.Bytes())
}

// Destroyed reports whether Destroy has run.
func (s *Buffer) Destroyed() bool {
	if s == nil {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.destroyed
}

// Destroy zeroes the owned bytes and releases them. It is idempotent.
func (s *Buffer) Destroy() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.destroyed {
		return
	}
	Wipe(s.b)
	s.b = nil
	s.destroyed = true
}

// Wipe overwrites b with zeroes.
func Wipe(b []byte) {
	clear(b)
}

// Scoped copies src into a Buffer, runs fn with it and destroys the buffer
// when fn returns or panics.
func Scoped[T any](src []byte, fn func(*Buffer) (T, error)) (T, error) {
	buf := Copy(src)
	defer buf.Destroy()
	return fn(buf)
}
