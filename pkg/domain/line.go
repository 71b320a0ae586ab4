package domain

// LineKind identifies who committed a transcript line.
type LineKind string

const (
	// LineSystem marks a prompt the machine typed out and committed.
	LineSystem LineKind = "system"

	// LineUser marks an answer the visitor committed.
	LineUser LineKind = "user"
)

// Line is one committed entry of the transcript. Lines are immutable once
// appended; their IDs come from a per-session monotonic counter and are
// never reused, so presenters can key on them safely.
type Line struct {
	ID   int      `json:"id"`
	Kind LineKind `json:"kind"`
	Text string   `json:"text"`
}
