package domain

// Snapshot is the complete read model of a session: everything a presenter or
// transport adapter needs to draw the terminal, and nothing else. All slices
// are copies; holding a snapshot never aliases live state.
type Snapshot struct {
	SessionID   string      `json:"session_id"`
	Title       string      `json:"title,omitempty"`
	Intro       string      `json:"intro,omitempty"`
	Step        int         `json:"step"`
	Phase       Phase       `json:"phase"`
	Typing      bool        `json:"typing"`
	Buffer      string      `json:"buffer"`
	Transcript  []Line      `json:"transcript"`
	Answers     []string    `json:"answers"`
	PromptCount int         `json:"prompt_count"`
	Action      ActionState `json:"action"`
}

// NewSnapshot builds the read model for a state driven by the given script.
func NewSnapshot(script *Script, state *State) Snapshot {
	title, intro := "", ""
	if script != nil {
		title = script.Title
		intro = script.Intro
	}
	return Snapshot{
		SessionID:   state.ID,
		Title:       title,
		Intro:       intro,
		Step:        state.Step,
		Phase:       state.Phase(),
		Typing:      state.Typing,
		Buffer:      state.Buffer,
		Transcript:  append([]Line(nil), state.Transcript...),
		Answers:     append([]string(nil), state.Answers...),
		PromptCount: state.PromptCount(),
		Action:      state.Action(),
	}
}
