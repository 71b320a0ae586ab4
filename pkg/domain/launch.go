package domain

// LaunchRequest is the immutable payload handed to the launcher when the gate
// fires. It is built from a deep copy of the answers at invocation time; later
// state changes (there are none by invariant, but still) can never reach it.
type LaunchRequest struct {
	SessionID string            `json:"session_id"`
	Script    string            `json:"script,omitempty"` // Script title, for launcher-side labelling
	Launcher  string            `json:"launcher,omitempty"`
	Answers   []string          `json:"answers"`
	Env       map[string]string `json:"env,omitempty"`
}

// NewLaunchRequest snapshots the answers of a completed session into a
// handoff payload, applying the script's launch binding if present.
func NewLaunchRequest(script *Script, state *State) LaunchRequest {
	req := LaunchRequest{
		SessionID: state.ID,
		Answers:   append([]string(nil), state.Answers...),
	}
	if script == nil {
		return req
	}
	req.Script = script.Title
	if script.Launch != nil {
		req.Launcher = script.Launch.Launcher
		if len(script.Launch.Env) > 0 {
			env := make(map[string]string, len(script.Launch.Env))
			for k, v := range script.Launch.Env {
				env[k] = v
			}
			req.Env = env
		}
	}
	return req
}
