package circuit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// outcome is one recorded ledger read: 'f' for failure, 's' for success.
func replay(b *Breaker, outcomes string) (fallback bool, changes []StateChange) {
	for _, o := range outcomes {
		var change StateChange
		switch o {
		case 'f':
			fallback, change = b.RecordFailure()
		case 's':
			var primary bool
			primary, change = b.RecordSuccess()
			fallback = !primary
		}
		if change.Opened || change.Closed {
			changes = append(changes, change)
		}
	}
	return fallback, changes
}

func TestBreaker_Transitions(t *testing.T) {
	tests := []struct {
		name         string
		failures     int
		successes    int
		outcomes     string
		wantState    State
		wantFallback bool
		wantChanges  []StateChange
	}{
		{
			name:      "fresh breaker is closed",
			wantState: StateClosed,
		},
		{
			name:         "failures below threshold keep it closed",
			failures:     3,
			outcomes:     "ff",
			wantState:    StateClosed,
			wantFallback: false,
		},
		{
			name:         "threshold of consecutive failures opens it",
			failures:     3,
			outcomes:     "fff",
			wantState:    StateOpen,
			wantFallback: true,
			wantChanges:  []StateChange{{Opened: true}},
		},
		{
			name:      "a success resets the failure streak",
			failures:  3,
			outcomes:  "ffsff",
			wantState: StateClosed,
		},
		{
			name:         "further failures while open report no new transition",
			failures:     1,
			outcomes:     "fff",
			wantState:    StateOpen,
			wantFallback: true,
			wantChanges:  []StateChange{{Opened: true}},
		},
		{
			name:         "one probe success is not enough to close",
			failures:     1,
			successes:    2,
			outcomes:     "fs",
			wantState:    StateOpen,
			wantFallback: true,
			wantChanges:  []StateChange{{Opened: true}},
		},
		{
			name:        "success threshold closes it",
			failures:    1,
			successes:   2,
			outcomes:    "fss",
			wantState:   StateClosed,
			wantChanges: []StateChange{{Opened: true}, {Closed: true}},
		},
		{
			name:         "a failure while open restarts the success streak",
			failures:     1,
			successes:    3,
			outcomes:     "fssfss",
			wantState:    StateOpen,
			wantFallback: true,
			wantChanges:  []StateChange{{Opened: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("ledger-reads", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.successes))

			fallback, changes := replay(b, tt.outcomes)

			assert.Equal(t, tt.wantState, b.State())
			assert.Equal(t, tt.wantState == StateOpen, b.IsOpen())
			assert.Equal(t, tt.wantFallback, fallback)
			assert.Equal(t, tt.wantChanges, changes)
		})
	}
}

func TestBreaker_DefaultsIgnoreNonPositiveOptions(t *testing.T) {
	b := New("ledger-reads", WithFailureThreshold(0), WithSuccessThreshold(-1))
	assert.Equal(t, "ledger-reads", b.Name())

	_, changes := replay(b, "ffff")
	assert.Empty(t, changes, "default threshold is five failures")
	_, changes = replay(b, "f")
	assert.Equal(t, []StateChange{{Opened: true}}, changes)
	assert.Equal(t, "open", b.State().String())
}

func TestBreaker_CooldownGatesProbes(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	b := New("ledger-reads",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	require.True(t, b.Allow())
	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker fails fast")

	now = now.Add(9 * time.Second)
	assert.False(t, b.Allow())

	now = now.Add(2 * time.Second)
	assert.True(t, b.Allow(), "probe allowed after cooldown")

	b.RecordFailure()
	assert.False(t, b.Allow(), "failed probe restarts the cooldown")
}

func TestBreaker_ConcurrentRecording(t *testing.T) {
	b := New("ledger-reads", WithFailureThreshold(50))

	var wg sync.WaitGroup
	opened := make(chan struct{}, 100)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, change := b.RecordFailure(); change.Opened {
				opened <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(opened)

	assert.True(t, b.IsOpen())
	assert.Len(t, opened, 1, "exactly one caller observes the transition")
}
