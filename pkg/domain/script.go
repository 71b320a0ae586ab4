package domain

import (
	"fmt"
	"strings"
	"time"
)

// Pacing defaults. These shape the feel of the auto-typed prompts only;
// correctness never depends on them and zero is a legal value for both.
const (
	DefaultCharInterval = 40 * time.Millisecond
	DefaultSettleDelay  = 300 * time.Millisecond
)

// Script defines one interview: the fixed, ordered prompts to present and the
// pacing of the auto-typing. The prompt list is immutable for the lifetime of
// a session; every step computation derives from its length.
type Script struct {
	// Title names the script. It is echoed in snapshots and launch requests.
	Title string `json:"title" mapstructure:"title"`

	// Intro is optional markdown shown before the first prompt is typed.
	Intro string `json:"intro,omitempty" mapstructure:"intro"`

	// Prompts are presented in order, one question per entry.
	Prompts []string `json:"prompts" mapstructure:"prompts"`

	// CharInterval is the delay between emitted prompt characters.
	CharInterval time.Duration `json:"char_interval" mapstructure:"char_interval"`

	// SettleDelay is the pause between the last emitted character and the
	// commit of the prompt line.
	SettleDelay time.Duration `json:"settle_delay" mapstructure:"settle_delay"`

	// Launch optionally binds the gate action to a named launcher.
	Launch *LaunchSpec `json:"launch,omitempty" mapstructure:"launch"`
}

// LaunchSpec binds the launch action to a host-side launcher by name, with
// optional static environment forwarded alongside the answers.
type LaunchSpec struct {
	Launcher string            `json:"launcher" mapstructure:"launcher"`
	Env      map[string]string `json:"env,omitempty" mapstructure:"env"`
}

// PromptCount returns N, the number of prompts.
func (sc *Script) PromptCount() int {
	return len(sc.Prompts)
}

// FinalStep returns the terminal step index (2N).
func (sc *Script) FinalStep() int {
	return 2 * len(sc.Prompts)
}

// Normalize fills in pacing defaults where the script left them unset.
// Explicit zero cannot be distinguished from unset here; scripts that want a
// zero delay should use a negative value, which Normalize clamps to zero.
func (sc *Script) Normalize() {
	if sc.CharInterval == 0 {
		sc.CharInterval = DefaultCharInterval
	}
	if sc.SettleDelay == 0 {
		sc.SettleDelay = DefaultSettleDelay
	}
	if sc.CharInterval < 0 {
		sc.CharInterval = 0
	}
	if sc.SettleDelay < 0 {
		sc.SettleDelay = 0
	}
}

// Clone returns a deep copy so callers can hold a script without sharing
// the prompt slice or launch environment with the source.
func (sc *Script) Clone() *Script {
	cp := *sc
	cp.Prompts = append([]string(nil), sc.Prompts...)
	if sc.Launch != nil {
		launch := *sc.Launch
		if sc.Launch.Env != nil {
			launch.Env = make(map[string]string, len(sc.Launch.Env))
			for k, v := range sc.Launch.Env {
				launch.Env[k] = v
			}
		}
		cp.Launch = &launch
	}
	return &cp
}

// Validate checks that the script can actually drive an interview.
func (sc *Script) Validate() error {
	if len(sc.Prompts) == 0 {
		return fmt.Errorf("%w: script has no prompts", ErrScriptInvalid)
	}
	for i, p := range sc.Prompts {
		if strings.TrimSpace(p) == "" {
			return fmt.Errorf("%w: prompt %d is blank", ErrScriptInvalid, i)
		}
	}
	if sc.Launch != nil && strings.TrimSpace(sc.Launch.Launcher) == "" {
		return fmt.Errorf("%w: launch block present but launcher name is blank", ErrScriptInvalid)
	}
	return nil
}
