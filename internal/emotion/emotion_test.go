package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energia/internal/types"
)

func TestExtractFromFace(t *testing.T) {
	e := New(types.FixedSelector(0))

	result := types.VisionResult{
		Faces: []types.FaceAnnotation{{
			Joy:      types.VeryLikely,
			Sorrow:   types.VeryUnlikely,
			Anger:    types.VeryUnlikely,
			Surprise: types.Unlikely,
		}},
	}

	emotions := e.Extract(result)

	assert.Equal(t, types.VeryLikely, emotions["joy"])
	// calm = 1 - max(0.05, 0.2) = 0.8 > 0.7
	assert.Equal(t, types.Likely, emotions["calm"])
	// contentment = 0.95 * 0.8 = 0.76 > 0.7
	assert.Equal(t, types.Likely, emotions["contentment"])
	// melancholy = 0.05 * 0.95 well below 0.3
	assert.Equal(t, types.Unlikely, emotions["melancholy"])
}

func TestExtractFaceFieldsDefaultWhenMissing(t *testing.T) {
	e := New(types.FixedSelector(0))

	emotions := e.Extract(types.VisionResult{
		Faces: []types.FaceAnnotation{{}},
	})

	assert.Equal(t, types.Possible, emotions["joy"])
	assert.Equal(t, types.Unlikely, emotions["sorrow"])
	assert.Equal(t, types.VeryUnlikely, emotions["anger"])
	assert.Equal(t, types.Possible, emotions["surprise"])
}

func TestExtractFromLabels(t *testing.T) {
	e := New(types.FixedSelector(0))

	emotions := e.Extract(types.VisionResult{
		Labels: []types.LabelAnnotation{
			{Description: "Meditation retreat", Score: 0.92},
			{Description: "Artistic painting", Score: 0.55},
			{Description: "Quiet forest", Score: 0.3},
		},
	})

	assert.Equal(t, types.Likely, emotions["peaceful"])
	assert.Equal(t, types.Possible, emotions["creative"])
	assert.Equal(t, types.Unlikely, emotions["reflective"])
}

func TestExtractStrongerSignalWins(t *testing.T) {
	e := New(types.FixedSelector(0))

	// The label gives peaceful=Unlikely; the cushion upgrades it.
	emotions := e.Extract(types.VisionResult{
		Labels:  []types.LabelAnnotation{{Description: "calm", Score: 0.1}},
		Objects: []types.ObjectAnnotation{{Name: "Meditation Cushion", Score: 0.9}},
	})

	assert.Equal(t, types.VeryLikely, emotions["peaceful"])
	assert.Equal(t, types.Likely, emotions["spiritual"])
}

func TestExtractWeakerSignalDoesNotDowngrade(t *testing.T) {
	e := New(types.FixedSelector(0))

	emotions := e.Extract(types.VisionResult{
		Labels: []types.LabelAnnotation{
			{Description: "zen garden", Score: 0.95},
			{Description: "calm morning", Score: 0.1},
		},
	})

	assert.Equal(t, types.Likely, emotions["peaceful"])
}

func TestExtractSafeSearch(t *testing.T) {
	e := New(types.FixedSelector(0))

	emotions := e.Extract(types.VisionResult{
		SafeSearch: &types.SafeSearchAnnotation{
			Spoof:   types.VeryLikely,
			Medical: types.Likely,
		},
	})

	assert.Equal(t, types.Likely, emotions["playful"])
	assert.Equal(t, types.Possible, emotions["joyful"])
	assert.Equal(t, types.Possible, emotions["concerned"])
}

func TestExtractBackfillsSparseResults(t *testing.T) {
	e := New(types.FixedSelector(2))

	emotions := e.Extract(types.VisionResult{})

	// Seed 2 picks candidates at indexes 2, 3, 4.
	assert.Equal(t, types.Likely, emotions["focused"])
	assert.Equal(t, types.Possible, emotions["creative"])
	assert.Equal(t, types.Possible, emotions["reflective"])
}

func TestExtractNeverEmpty(t *testing.T) {
	for seed := 0; seed < 10; seed++ {
		e := New(types.FixedSelector(seed))
		emotions := e.Extract(types.VisionResult{})
		require.NotEmpty(t, emotions, "seed %d", seed)
	}
}

func TestDefaultSetVariants(t *testing.T) {
	first := New(types.FixedSelector(0)).DefaultSet()
	assert.Equal(t, types.Likely, first["joy"])
	assert.Equal(t, types.Likely, first["calm"])

	last := New(types.FixedSelector(3)).DefaultSet()
	assert.Equal(t, types.Likely, last["reflective"])

	// Selector wraps around the four sets.
	wrapped := New(types.FixedSelector(4)).DefaultSet()
	assert.Equal(t, first, wrapped)
}

func TestNilSelectorFallsBackToClock(t *testing.T) {
	e := New(nil)
	assert.NotEmpty(t, e.Extract(types.VisionResult{}))
}
