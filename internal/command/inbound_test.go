package command_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadcastswitch/switcherd/internal/command"
	"github.com/broadcastswitch/switcherd/internal/state"
	"github.com/broadcastswitch/switcherd/internal/wire/frame"
)

func TestParseKnownCode(t *testing.T) {
	t.Parallel()

	f := frame.Frame{Code: string(command.CodeDCut), Payload: []byte{0, 0, 0, 0}}
	cmd, err := command.Parse(f)
	require.NoError(t, err)

	dcut, ok := cmd.(*command.DCut)
	require.True(t, ok)
	assert.Equal(t, uint8(0), dcut.ME)
}

func TestParseUnknownCodeNeverFails(t *testing.T) {
	t.Parallel()

	f := frame.Frame{Code: "XxXx", Payload: []byte{1, 2, 3}}
	cmd, err := command.Parse(f)
	require.NoError(t, err)

	unknown, ok := cmd.(*command.Unknown)
	require.True(t, ok)
	assert.Equal(t, "XxXx", unknown.RawCode)
	assert.Equal(t, []byte{1, 2, 3}, unknown.RawPayload)

	s := state.New()
	unknown.Apply(s)
	assert.Equal(t, 0, s.ProgramInput(0))
}

func TestParseBadPayloadLength(t *testing.T) {
	t.Parallel()

	_, err := command.Parse(frame.Frame{Code: string(command.CodeCPgI), Payload: []byte{0, 0}})
	assert.ErrorIs(t, err, command.ErrBadPayload)
}

func TestCPgIApply(t *testing.T) {
	t.Parallel()

	f := frame.Frame{Code: string(command.CodeCPgI), Payload: []byte{0, 0, 0, 7}}
	cmd, err := command.Parse(f)
	require.NoError(t, err)

	s := state.New()
	cmd.(command.Applier).Apply(s)
	assert.Equal(t, 7, s.ProgramInput(0))
}

func TestDCutApplySwapsSources(t *testing.T) {
	t.Parallel()

	s := state.New()
	s.SetProgramInput(0, 1)
	s.SetPreviewInput(0, 2)

	f := frame.Frame{Code: string(command.CodeDCut), Payload: []byte{0, 0, 0, 0}}
	cmd, err := command.Parse(f)
	require.NoError(t, err)
	cmd.(command.Applier).Apply(s)

	assert.Equal(t, 2, s.ProgramInput(0))
	assert.Equal(t, 1, s.PreviewInput(0))
}

func TestEncodeAllPropagatesSideEffects(t *testing.T) {
	t.Parallel()

	s := state.New()
	ctx := &command.Context{Store: s, Now: time.Now()}

	frames, err := command.EncodeAll(ctx, []command.Outbound{
		&command.TrPs{ME: 0, FramesRemaining: 15, Total: 30},
	})
	require.NoError(t, err)
	require.Len(t, frames, 1)

	assert.Equal(t, 5000, s.TransitionPosition(0))
}
