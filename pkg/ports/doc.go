/*
Package ports defines the driven ports (interfaces) for the Kiosk engine.

These interfaces decouple the core intake machine from external
implementations, allowing sessions to work with various script sources,
persistence backends, schedulers, and launch targets.

# Key Interfaces

  - ScriptLoader: Responsible for loading the interview Script (e.g., from Loam or Memory).
  - TranscriptStore: Responsible for persisting and loading session State.
  - Launcher: Receives the answers when the gate fires.
  - Scheduler: Arms and cancels the timers that drive auto-typing.
  - DistributedLocker: Provides distributed locking for concurrent session access.
*/
package ports
