package command_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadcastswitch/switcherd/internal/command"
	"github.com/broadcastswitch/switcherd/internal/state"
)

func newStoreWithRate(rate int) *state.Store {
	s := state.New()
	s.SetProgramInput(0, 1)
	s.SetPreviewInput(0, 2)
	s.Set("MixEffectBlocks.0.TransitionStyle.style", "Mix")
	s.Set("MixEffectBlocks.0.TransitionStyle.MixParameters.rate", intToStr(rate))
	return s
}

func intToStr(n int) string {
	return string(rune('0' + n/10)) + string(rune('0'+n%10))
}

func TestPlanDCutAppliesImmediatelyAndReturnsOneCarrier(t *testing.T) {
	t.Parallel()

	s := state.New()
	s.SetProgramInput(0, 1)
	s.SetPreviewInput(0, 2)

	now := time.Now()
	carriers := command.Plan(now, s, "ATEM Mini", &command.DCut{ME: 0})

	require.Len(t, carriers, 1)
	assert.True(t, carriers[0].Multicast)
	assert.Equal(t, 2, s.ProgramInput(0))
	assert.Equal(t, 1, s.PreviewInput(0))
}

func TestPlanCPgIReturnsOneCarrier(t *testing.T) {
	t.Parallel()

	s := state.New()
	now := time.Now()
	carriers := command.Plan(now, s, "ATEM Mini", &command.CPgI{ME: 0, Source: 3})

	require.Len(t, carriers, 1)
	assert.Equal(t, 3, s.ProgramInput(0))
}

func TestPlanUnknownReturnsNoCarriers(t *testing.T) {
	t.Parallel()
	s := state.New()
	carriers := command.Plan(time.Now(), s, "ATEM Mini", &command.Unknown{RawCode: "XxXx"})
	assert.Nil(t, carriers)
}

func TestPlanDAutSchedulesIntermediateAndFinalCarriers(t *testing.T) {
	t.Parallel()

	s := newStoreWithRate(30)
	s.SetProgramInput(0, 1)
	s.SetPreviewInput(0, 2)

	now := time.Now()
	carriers := command.Plan(now, s, "ATEM Mini", &command.DAut{ME: 0})

	require.True(t, len(carriers) >= 2, "expected at least an immediate and a final carrier")

	// First carrier fires immediately.
	assert.True(t, carriers[0].Due(now))

	// Last carrier fires after the full transition duration and swaps sources
	// via BeforeEncode when materialized.
	last := carriers[len(carriers)-1]
	require.NotNil(t, last.BeforeEncode)
	last.BeforeEncode(s)
	assert.Equal(t, 2, s.ProgramInput(0))
	assert.Equal(t, 1, s.PreviewInput(0))

	// Every carrier, intermediate ones included, is strictly later than the
	// one before it.
	for i := 1; i < len(carriers); i++ {
		assert.True(t, carriers[i].SendTime.After(carriers[i-1].SendTime))
	}
}
