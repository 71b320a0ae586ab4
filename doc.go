/*
Package kiosk is a deterministic intake-terminal engine: it drives a scripted
sequence of auto-typed questions, captures the visitor's answers into an
append-only transcript, and gates a single launch action on completion.

A session walks a fixed list of N prompts. For each one the engine "types" the
prompt character by character on a configurable cadence, settles briefly, then
commits the prompt to the transcript and hands the line to the visitor. The
committed answer goes into a fixed answer slot and the next prompt begins.
After the last answer a launch gate arms; firing it hands an immutable
snapshot of the answers to a launcher and latches the session into its running
state.

The engine separates the pure state machine (steps, transcript, gate) from
everything environmental (timers, persistence, presentation, the launch
target), following Hexagonal Architecture. Hosts embed it behind any surface:
an interactive console, an HTTP API, or an MCP server.

# Key Properties

  - Deterministic Sequencing: steps only ever advance by one; no skips, no rewinds.
  - Append-Only Transcript: committed lines are immutable and strictly alternate
    system prompt / visitor answer.
  - Safe Timers: every scheduled keystroke carries the step it was armed for;
    a timer that outlives its step is dropped, never applied.
  - Gated Handoff: the launch action fires exactly once, with a snapshot that
    later state can never reach.

# Usage

Create a session from a script and drive it through its phases:

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/kiosk"
		"github.com/aretw0/kiosk/pkg/domain"
	)

	func main() {
		session, err := kiosk.New("", kiosk.WithScript(&domain.Script{
			Title:   "visitor intake",
			Prompts: []string{"What is your name?", "Who are you visiting?"},
		}))
		if err != nil {
			log.Fatal(err)
		}
		defer session.Close()

		snaps, cancel := session.Subscribe()
		defer cancel()

		if err := session.Start(context.Background()); err != nil {
			log.Fatal(err)
		}

		answers := []string{"Ada", "The machine room"}
		for snap := range snaps {
			if snap.Phase == domain.PhaseAwaitingInput && snap.Buffer == "" {
				_ = session.SetInput(answers[(snap.Step-1)/2])
				_ = session.Submit()
			}
			if snap.Action == domain.ActionEnabled {
				_ = session.Launch(context.Background())
			}
			if snap.Action == domain.ActionRunning {
				fmt.Println("handed off:", snap.Answers)
				break
			}
		}
	}

Scripts normally live in Loam markdown documents (frontmatter holds the
prompts and pacing, the body is an intro shown before the first question);
kiosk.New("./scripts/visitor.md") loads one directly.
*/
package kiosk
