/*
Package session implements stored-session management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to session
states across multiple replicas, integrating per-session mutexes with optional
distributed locking and the transcript store adapters. Live sessions are
driven by the kiosk engine itself; this package governs access to what the
engine persists.
*/
package session
