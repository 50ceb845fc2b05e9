package session_test

import (
	"testing"

	"github.com/jrsteele09/go-intern-portal/portalapi"
	"github.com/jrsteele09/go-intern-portal/session"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	identity := &portalapi.Identity{Email: "a@b.com"}

	tests := []struct {
		name string
		snap session.Snapshot
		want session.Decision
	}{
		{"uninitialized without identity", session.Snapshot{State: session.StateUninitialized}, session.DecisionDefer},
		{"verifying with identity", session.Snapshot{State: session.StateVerifying, Identity: identity}, session.DecisionDefer},
		{"uninitialized with identity", session.Snapshot{State: session.StateUninitialized, Identity: identity}, session.DecisionDefer},
		{"ready with identity", session.Snapshot{State: session.StateReady, Identity: identity}, session.DecisionAllow},
		{"ready without identity", session.Snapshot{State: session.StateReady}, session.DecisionRedirect},
		{"ready guest only", session.Snapshot{State: session.StateReady, Guest: true}, session.DecisionRedirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, session.Decide(tt.snap))
		})
	}
}

func TestStateAndDecisionStrings(t *testing.T) {
	require.Equal(t, "verifying", session.StateVerifying.String())
	require.Equal(t, "redirect", session.DecisionRedirect.String())
}
