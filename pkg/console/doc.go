/*
Package console implements the interactive terminal surface for a kiosk
session.

It bridges the session engine and the visitor's terminal: snapshot frames
stream in over a subscription and are drawn incrementally (the auto-typed
prompt animates in place), while visitor lines are pumped from stdin and
dispatched as draft-and-submit operations. Presentation is pluggable through
the Handler strategy, so the same loop drives the rich TTY mode, plain pipes
and JSON-lines automation.

# Key Components

  - Console: the orchestrator owning the frame/input loop.
  - Handler: the presentation strategy (text or JSON-lines).
  - TextHandler: incremental terminal rendering with an input pump.
  - JSONHandler: one JSON frame per state change, for scripting hosts.
  - SignalManager: SIGINT/SIGTERM handling around blocking reads.

# Usage

	c := console.New(
		console.WithIO(os.Stdin, os.Stdout),
	)

	if err := c.Run(ctx, session); err != nil {
		log.Fatal(err)
	}
*/
package console
