/*
Package observability provides Prometheus instrumentation for kiosk sessions.

It exposes a Metrics bundle whose Hooks plug straight into a session, counting
started interviews, committed lines, refusals and launches, and timing how
long each prompt takes to type out.
*/
package observability
