// Package password implements the memory-hard hashing primitive used by the
// goPassword engine: Argon2id hashing, Argon2i/Argon2id verification and
// parameter introspection.
//
// # Output format
//
// Hashes follow libsodium's crypto_pwhash_str layout: a PHC string
//
//	$argon2id$v=19$m=<KiB>,t=<passes>,p=1$<salt>$<key>
//
// right-padded with NUL bytes to exactly [HashBytes] bytes. Salt and key use
// unpadded standard base64. Trailing NUL bytes may be trimmed by storage
// layers; verification accepts both forms.
//
// # Cost parameters
//
// Memory cost (memlimit) is expressed in bytes and opslimit in passes, the
// same units libsodium uses. The encoded m= field stores memlimit/1024.
// Valid ranges are reported by [DefaultLimits].
//
// # Architecture boundaries
//
// This package owns the cryptographic computation only. Admission control,
// outcome classification and cost policy live in the engine.
//
// # What this package must NOT do
//
//   - Retain password or hash buffers after a call returns.
//   - Import any other goPassword package.
//   - Log plaintext passwords or hash material.
package password
