/*
Package domain contains the core domain models and business logic for the Kiosk engine.

It defines the fundamental entities of the intake machine: the Script being
presented, the append-only Line transcript, the step-indexed State, and the
events that drive transitions between steps. This package is kept pure and free
of external dependencies like I/O, clocks, or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Script: The fixed, ordered list of prompts plus pacing configuration.
  - Line: One committed entry of the append-only transcript (system or user).
  - State: The runtime snapshot of a session (step, transcript, buffer, answers).
  - Event: A typed input to the state machine (auto-type ticks, user edits, launch).
  - Snapshot: The read-only view handed to presenters and transport adapters.
*/
package domain
