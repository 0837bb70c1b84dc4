package capture

import (
	"testing"

	"github.com/penwyp/go-mouse-recorder/internal/core/model"
	"github.com/stretchr/testify/assert"
)

func TestEdgeDetector(t *testing.T) {
	type step struct {
		left, right bool
		want        model.Kind
	}
	tests := []struct {
		name  string
		steps []step
	}{
		{
			name: "idle is move",
			steps: []step{
				{false, false, model.KindMove},
				{false, false, model.KindMove},
			},
		},
		{
			name: "left click",
			steps: []step{
				{true, false, model.KindLeftDown},
				{true, false, model.KindMove},
				{false, false, model.KindLeftUp},
			},
		},
		{
			name: "right click",
			steps: []step{
				{false, true, model.KindRightDown},
				{false, false, model.KindRightUp},
			},
		},
		{
			name: "both pressed in one tick reports left first then right",
			steps: []step{
				{true, true, model.KindLeftDown},
				{true, true, model.KindRightDown},
				{true, true, model.KindMove},
			},
		},
		{
			name: "both released in one tick",
			steps: []step{
				{true, true, model.KindLeftDown},
				{true, true, model.KindRightDown},
				{false, false, model.KindLeftUp},
				{false, false, model.KindRightUp},
			},
		},
		{
			name: "deferred right edge dropped when it reverts",
			steps: []step{
				{true, true, model.KindLeftDown},
				{true, false, model.KindMove},
			},
		},
		{
			name: "left release wins over right press",
			steps: []step{
				{true, false, model.KindLeftDown},
				{false, true, model.KindLeftUp},
				{false, true, model.KindRightDown},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d EdgeDetector
			for i, s := range tt.steps {
				assert.Equal(t, s.want, d.Detect(s.left, s.right), "step %d", i)
			}
		})
	}
}

func TestEdgeDetectorReset(t *testing.T) {
	var d EdgeDetector
	assert.Equal(t, model.KindLeftDown, d.Detect(true, false))
	d.Reset()
	assert.Equal(t, model.KindLeftDown, d.Detect(true, false))
}
