package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXML = `
<Switcher product="ATEM Test" >
	<MixEffectBlocks>
		<MixEffectBlock index="0">
			<TransitionStyle style="Mix">
				<MixParameters rate="25" />
			</TransitionStyle>
		</MixEffectBlock>
		<MixEffectBlock index="1">
			<TransitionStyle style="Dip">
				<MixParameters rate="30" />
			</TransitionStyle>
		</MixEffectBlock>
	</MixEffectBlocks>
	<Inputs>
		<Input id="1" name="Camera 1" />
	</Inputs>
</Switcher>
`

func TestParseFlattensRepeatingContainersAsIndexedMaps(t *testing.T) {
	t.Parallel()

	s, err := parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	assert.Equal(t, "ATEM Test", s.Product())
	assert.Equal(t, "Mix", s.TransitionStyle(0))
	assert.Equal(t, "Dip", s.TransitionStyle(1))

	rate, ok := s.Get("MixEffectBlocks.1.TransitionStyle.MixParameters.rate")
	require.True(t, ok)
	assert.Equal(t, "30", rate)
}

func TestParseSingleRepeatingChildStillIndexed(t *testing.T) {
	t.Parallel()

	s, err := parse(strings.NewReader(sampleXML))
	require.NoError(t, err)

	// Inputs has exactly one Input child; repeatingContainers still forces
	// an indexed map rather than collapsing it to a bare object.
	name, ok := s.Get("Inputs.1.name")
	require.True(t, ok)
	assert.Equal(t, "Camera 1", name)
}

func TestIndexKeyPrefersIndexThenIDThenPosition(t *testing.T) {
	t.Parallel()

	withIndex := &element{Attrs: map[string]string{"index": "7", "id": "9"}}
	assert.Equal(t, "7", indexKey(withIndex, 2))

	withID := &element{Attrs: map[string]string{"id": "9"}}
	assert.Equal(t, "9", indexKey(withID, 2))

	bare := &element{Attrs: map[string]string{}}
	assert.Equal(t, "2", indexKey(bare, 2))
}

func TestDefaultProducesUsableStore(t *testing.T) {
	t.Parallel()

	s := Default()
	assert.Equal(t, "ATEM Television Studio HD", s.Product())
	assert.Equal(t, 1, s.ProgramInput(0))
	assert.Equal(t, 2, s.PreviewInput(0))

	name, ok := s.Get("Settings.Inputs.5.name")
	require.True(t, ok)
	assert.Equal(t, "Input 5", name)
}
