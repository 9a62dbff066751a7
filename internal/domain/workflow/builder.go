package workflow

import (
	"context"
	"fmt"

	"github.com/adityahw/koperasi-backoffice/internal/domain/entity"
)

// GuardFunc evaluates whether a candidate transition should be taken. It
// reads any branching data (loan amount, thresholds) from the StepContext
// carried in ctx.
type GuardFunc func(ctx context.Context) bool

// StateMachineBuilder builds a configured state machine.
type StateMachineBuilder interface {
	// Configure returns the transition configuration for the given status.
	Configure(status entity.Status) StateConfiguration

	// Build creates a state machine instance positioned at initialStatus.
	Build(initialStatus entity.Status) StateMachine
}

// StateConfiguration configures transitions out of one status.
type StateConfiguration interface {
	// Permit allows a trigger to transition to the target status.
	Permit(trigger Trigger, to entity.Status) StateConfiguration

	// PermitIf allows the transition only when the guard passes. Candidates
	// for the same trigger are tried in registration order.
	PermitIf(trigger Trigger, to entity.Status, guard GuardFunc) StateConfiguration
}

type transition struct {
	to    entity.Status
	guard GuardFunc
}

type stateConfig struct {
	from        entity.Status
	transitions map[Trigger][]transition
}

type stateMachineBuilder struct {
	configurations map[entity.Status]*stateConfig
}

type stateMachine struct {
	current        entity.Status
	configurations map[entity.Status]*stateConfig
}

// NewBuilder creates a new state machine builder.
func NewBuilder() StateMachineBuilder {
	return &stateMachineBuilder{
		configurations: make(map[entity.Status]*stateConfig),
	}
}

func (b *stateMachineBuilder) Configure(status entity.Status) StateConfiguration {
	if !status.IsValid() {
		panic(fmt.Sprintf("invalid status: %s", status))
	}

	config, exists := b.configurations[status]
	if !exists {
		config = &stateConfig{
			from:        status,
			transitions: make(map[Trigger][]transition),
		}
		b.configurations[status] = config
	}

	return config
}

func (b *stateMachineBuilder) Build(initialStatus entity.Status) StateMachine {
	if !initialStatus.IsValid() {
		panic(fmt.Sprintf("invalid initial status: %s", initialStatus))
	}

	// Copy configurations so later builder mutation cannot leak into a
	// built machine.
	configsCopy := make(map[entity.Status]*stateConfig, len(b.configurations))
	for status, config := range b.configurations {
		transitionsCopy := make(map[Trigger][]transition, len(config.transitions))
		for trigger, transitions := range config.transitions {
			transitionsCopy[trigger] = append([]transition{}, transitions...)
		}
		configsCopy[status] = &stateConfig{
			from:        status,
			transitions: transitionsCopy,
		}
	}

	return &stateMachine{
		current:        initialStatus,
		configurations: configsCopy,
	}
}

func (c *stateConfig) Permit(trigger Trigger, to entity.Status) StateConfiguration {
	return c.PermitIf(trigger, to, nil)
}

func (c *stateConfig) PermitIf(trigger Trigger, to entity.Status, guard GuardFunc) StateConfiguration {
	if !to.IsValid() {
		panic(fmt.Sprintf("invalid target status: %s", to))
	}

	c.transitions[trigger] = append(c.transitions[trigger], transition{
		to:    to,
		guard: guard,
	})

	return c
}

func (m *stateMachine) State() entity.Status {
	return m.current
}

func (m *stateMachine) CanFire(trigger Trigger) bool {
	config, exists := m.configurations[m.current]
	if !exists {
		return false
	}

	transitions, exists := config.transitions[trigger]
	return exists && len(transitions) > 0
}

func (m *stateMachine) Fire(ctx context.Context, trigger Trigger) error {
	config, exists := m.configurations[m.current]
	if !exists {
		return fmt.Errorf("%w: cannot fire %s from %s (no configuration)", ErrInvalidTransition, trigger, m.current)
	}

	transitions, exists := config.transitions[trigger]
	if !exists || len(transitions) == 0 {
		return fmt.Errorf("%w: cannot fire %s from %s", ErrInvalidTransition, trigger, m.current)
	}

	for _, t := range transitions {
		if t.guard == nil || t.guard(ctx) {
			m.current = t.to
			return nil
		}
	}

	return fmt.Errorf("%w: trigger %s from %s", ErrGuardFailed, trigger, m.current)
}

func (m *stateMachine) PermittedTriggers() []Trigger {
	config, exists := m.configurations[m.current]
	if !exists {
		return []Trigger{}
	}

	triggers := make([]Trigger, 0, len(config.transitions))
	for trigger := range config.transitions {
		triggers = append(triggers, trigger)
	}

	return triggers
}
