// Package lifecycle provides a small guarded state machine for the
// submission lifecycle. Transitions are declared up front through a
// builder; firing a trigger either moves to the configured target
// state or fails without changing state.
package lifecycle

import (
	"context"
	"fmt"
)

// GuardFunc decides whether a candidate transition may be taken
type GuardFunc func(ctx context.Context) bool

// Machine tracks the current state and validates transitions
type Machine interface {
	// State returns the current state
	State() State

	// CanFire returns true if the trigger has at least one candidate
	// transition in the current state (guards are not evaluated)
	CanFire(trigger Trigger) bool

	// Fire executes the trigger, moving to the first candidate
	// transition whose guard passes
	Fire(ctx context.Context, trigger Trigger) error
}

// Builder configures a machine before it is built
type Builder interface {
	// Configure returns the transition configuration for a state
	Configure(state State) StateConfiguration

	// Build creates a machine starting in initialState
	Build(initialState State) Machine
}

// StateConfiguration declares outgoing transitions for one state
type StateConfiguration interface {
	// Permit allows trigger to transition to toState unconditionally
	Permit(trigger Trigger, toState State) StateConfiguration

	// PermitIf allows trigger to transition to toState when guard
	// passes. Candidates are tried in declaration order.
	PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration
}

type transition struct {
	toState State
	guard   GuardFunc
}

type stateConfig struct {
	transitions map[Trigger][]transition
}

type builder struct {
	configs map[State]*stateConfig
}

type machine struct {
	current State
	configs map[State]*stateConfig
}

// NewBuilder creates a new machine builder
func NewBuilder() Builder {
	return &builder{configs: make(map[State]*stateConfig)}
}

func (b *builder) Configure(state State) StateConfiguration {
	if !state.IsValid() {
		panic(fmt.Sprintf("invalid state: %s", state))
	}

	config, ok := b.configs[state]
	if !ok {
		config = &stateConfig{transitions: make(map[Trigger][]transition)}
		b.configs[state] = config
	}
	return config
}

func (b *builder) Build(initialState State) Machine {
	if !initialState.IsValid() {
		panic(fmt.Sprintf("invalid initial state: %s", initialState))
	}

	// Copy the configuration so later builder use cannot mutate a
	// built machine.
	configs := make(map[State]*stateConfig, len(b.configs))
	for state, config := range b.configs {
		transitions := make(map[Trigger][]transition, len(config.transitions))
		for trigger, candidates := range config.transitions {
			transitions[trigger] = append([]transition{}, candidates...)
		}
		configs[state] = &stateConfig{transitions: transitions}
	}

	return &machine{current: initialState, configs: configs}
}

func (c *stateConfig) Permit(trigger Trigger, toState State) StateConfiguration {
	return c.PermitIf(trigger, toState, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, toState State, guard GuardFunc) StateConfiguration {
	if !toState.IsValid() {
		panic(fmt.Sprintf("invalid target state: %s", toState))
	}

	c.transitions[trigger] = append(c.transitions[trigger], transition{
		toState: toState,
		guard:   guard,
	})
	return c
}

func (m *machine) State() State {
	return m.current
}

func (m *machine) CanFire(trigger Trigger) bool {
	config, ok := m.configs[m.current]
	if !ok {
		return false
	}
	return len(config.transitions[trigger]) > 0
}

func (m *machine) Fire(ctx context.Context, trigger Trigger) error {
	config, ok := m.configs[m.current]
	if !ok {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}

	candidates := config.transitions[trigger]
	if len(candidates) == 0 {
		return fmt.Errorf("%w: trigger %s from state %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range candidates {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.toState
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from state %s", ErrGuardFailed, trigger, m.current)
}
