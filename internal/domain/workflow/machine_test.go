package workflow

import (
	"context"
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingManager, false},
		{StatePendingAccounting, false},
		{StatePendingAdmin, false},
		{StateRevisionRequired, false},
		{StateApproved, false},
		{StateDenied, true},
		{StatePaid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsPendingReview(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StatePendingManager, true},
		{StatePendingAccounting, true},
		{StatePendingAdmin, true},
		{StateRevisionRequired, false},
		{StateApproved, false},
		{StateDenied, false},
		{StatePaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsPendingReview(); got != tt.expected {
				t.Errorf("State.IsPendingReview() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"valid state", StatePendingManager, true},
		{"valid terminal", StatePaid, true},
		{"invalid state", State("INVALID"), false},
		{"empty state", State(""), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.expected {
				t.Errorf("State.IsValid() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestBuilder_ConfigurePanicsOnInvalidState(t *testing.T) {
	builder := NewBuilder()

	defer func() {
		if r := recover(); r == nil {
			t.Error("Configure() should panic on invalid state")
		}
	}()

	builder.Configure(State("INVALID"))
}

func TestStateConfiguration_Permit(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingManager).
		Permit(TriggerManagerApprove, StatePendingAccounting)

	machine := builder.Build(StatePendingManager)

	if !machine.CanFire(TriggerManagerApprove) {
		t.Error("CanFire() should return true for permitted trigger")
	}
	if machine.CanFire(TriggerMarkPaid) {
		t.Error("CanFire() should return false for unconfigured trigger")
	}

	if err := machine.Fire(context.Background(), TriggerManagerApprove); err != nil {
		t.Fatalf("Fire() error: %v", err)
	}
	if machine.State() != StatePendingAccounting {
		t.Errorf("State() = %v, want %v", machine.State(), StatePendingAccounting)
	}
}

func TestStateMachine_FireInvalidTransition(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingManager).
		Permit(TriggerManagerApprove, StatePendingAccounting)

	machine := builder.Build(StatePendingManager)

	err := machine.Fire(context.Background(), TriggerMarkPaid)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Fire() error = %v, want ErrInvalidTransition", err)
	}
	if machine.State() != StatePendingManager {
		t.Errorf("failed Fire() must not change state, got %v", machine.State())
	}
}

func TestStateMachine_GuardedTransitions(t *testing.T) {
	allow := false
	builder := NewBuilder()
	builder.Configure(StatePendingManager).
		PermitIf(TriggerManagerApprove, StatePendingAdmin, func(ctx context.Context) bool { return allow }).
		PermitIf(TriggerManagerApprove, StatePendingAccounting, func(ctx context.Context) bool { return !allow })

	machine := builder.Build(StatePendingManager)
	if err := machine.Fire(context.Background(), TriggerManagerApprove); err != nil {
		t.Fatalf("Fire() error: %v", err)
	}
	if machine.State() != StatePendingAccounting {
		t.Errorf("guard routing: State() = %v, want %v", machine.State(), StatePendingAccounting)
	}

	allow = true
	machine = builder.Build(StatePendingManager)
	if err := machine.Fire(context.Background(), TriggerManagerApprove); err != nil {
		t.Fatalf("Fire() error: %v", err)
	}
	if machine.State() != StatePendingAdmin {
		t.Errorf("guard routing: State() = %v, want %v", machine.State(), StatePendingAdmin)
	}
}

func TestStateMachine_AllGuardsFailed(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StateApproved).
		PermitIf(TriggerMarkPaid, StatePaid, func(ctx context.Context) bool { return false })

	machine := builder.Build(StateApproved)
	err := machine.Fire(context.Background(), TriggerMarkPaid)
	if !errors.Is(err, ErrGuardFailed) {
		t.Errorf("Fire() error = %v, want ErrGuardFailed", err)
	}
}

func TestStateMachine_PermittedTriggers(t *testing.T) {
	builder := NewBuilder()
	builder.Configure(StatePendingAccounting).
		Permit(TriggerFinalApprove, StateApproved).
		Permit(TriggerRequestRevision, StateRevisionRequired).
		Permit(TriggerDeny, StateDenied)

	machine := builder.Build(StatePendingAccounting)
	triggers := machine.PermittedTriggers()
	if len(triggers) != 3 {
		t.Errorf("PermittedTriggers() returned %d triggers, want 3", len(triggers))
	}

	machine = builder.Build(StateDenied)
	if got := machine.PermittedTriggers(); len(got) != 0 {
		t.Errorf("terminal state should permit no triggers, got %v", got)
	}
}
