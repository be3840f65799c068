package result

import (
	"testing"
	"time"

	"apiwatch/internals/modules/probe"

	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	prevUp := ProbeLog{
		ID:        1,
		Status:    probe.StatusUp,
		CheckedAt: time.Now().Add(-time.Minute),
	}
	prevDown := prevUp
	prevDown.Status = probe.StatusDown

	tests := []struct {
		name     string
		prev     ProbeLog
		hasPrev  bool
		observed probe.Status
		want     Transition
	}{
		{
			name:     "first check is never a transition",
			hasPrev:  false,
			observed: probe.StatusDown,
			want:     Transition{Occurred: false},
		},
		{
			name:     "up stays up",
			prev:     prevUp,
			hasPrev:  true,
			observed: probe.StatusUp,
			want:     Transition{Occurred: false},
		},
		{
			name:     "up goes down",
			prev:     prevUp,
			hasPrev:  true,
			observed: probe.StatusDown,
			want:     Transition{Occurred: true, PrevStatus: probe.StatusUp, NewStatus: probe.StatusDown},
		},
		{
			name:     "down recovers",
			prev:     prevDown,
			hasPrev:  true,
			observed: probe.StatusUp,
			want:     Transition{Occurred: true, PrevStatus: probe.StatusDown, NewStatus: probe.StatusUp},
		},
		{
			name:     "down stays down",
			prev:     prevDown,
			hasPrev:  true,
			observed: probe.StatusDown,
			want:     Transition{Occurred: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Detect(tt.prev, tt.hasPrev, tt.observed)
			assert.Equal(t, tt.want.Occurred, got.Occurred)
			if tt.want.Occurred {
				assert.Equal(t, tt.want.PrevStatus, got.PrevStatus)
				assert.Equal(t, tt.want.NewStatus, got.NewStatus)
			}
		})
	}
}
