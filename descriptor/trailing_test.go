package descriptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrailingVariants(t *testing.T) {
	deadline := time.Now().Add(time.Minute)

	tests := []struct {
		name    string
		tr      Trailing
		valid   bool
		none    bool
		leading bool
	}{
		{"none", NoTrailing(), true, true, false},
		{"zero value behaves as none", Trailing{}, true, true, false},
		{"text", TextTrailing("3 left"), true, false, false},
		{"empty text", TextTrailing(""), false, false, false},
		{"marquee", MarqueeTrailing("now playing"), true, false, false},
		{"countdown", CountdownTrailing(deadline), true, false, false},
		{"countdown with zero deadline", CountdownTrailing(time.Time{}), false, false, false},
		{"icon", IconTrailing(SymbolIcon("bolt")), true, false, true},
		{"icon with none payload", Trailing{Kind: TrailingIcon}, false, false, true},
		{"spectrum", SpectrumTrailing(), true, false, false},
		{"animation", AnimationTrailing([]byte("{}")), true, false, true},
		{"animation without payload", Trailing{Kind: TrailingAnimation}, false, false, true},
		{"unknown kind", Trailing{Kind: "sparkle"}, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.tr.IsValid(), "IsValid")
			assert.Equal(t, tt.none, tt.tr.IsNone(), "IsNone")
			assert.Equal(t, tt.leading, tt.tr.IsLeadingCompatible(), "IsLeadingCompatible")
		})
	}
}

func TestTrailingClamping(t *testing.T) {
	t.Run("marquee speed", func(t *testing.T) {
		assert.Equal(t, 3.0, MarqueeTrailing("x").WithSpeed(12).Speed)
		assert.Equal(t, 0.25, MarqueeTrailing("x").WithSpeed(0.01).Speed)
	})

	t.Run("spectrum bars", func(t *testing.T) {
		assert.Equal(t, 12, SpectrumTrailing().WithBars(40).Bars)
		assert.Equal(t, 3, SpectrumTrailing().WithBars(1).Bars)
	})

	t.Run("normalize fills marquee speed", func(t *testing.T) {
		tr := Trailing{Kind: TrailingMarquee, Text: "x"}.normalized()
		assert.Equal(t, 1.0, tr.Speed)
	})

	t.Run("normalize fills spectrum bars", func(t *testing.T) {
		tr := Trailing{Kind: TrailingSpectrum}.normalized()
		assert.Equal(t, 5, tr.Bars)
	})
}

func TestProgressVariants(t *testing.T) {
	tests := []struct {
		name       string
		p          Progress
		valid      bool
		renderable bool
	}{
		{"none", NoProgress(), true, false},
		{"zero value", Progress{}, true, false},
		{"ring", RingProgress(), true, true},
		{"bar", BarProgress(), true, true},
		{"percent", PercentProgress(), true, true},
		{"countdown", CountdownProgress(), true, true},
		{"animation", AnimationProgress([]byte("{}")), true, true},
		{"animation without payload", Progress{Kind: ProgressAnimation}, false, true},
		{"unknown kind", Progress{Kind: "dial"}, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.p.IsValid(), "IsValid")
			assert.Equal(t, tt.renderable, tt.p.IsRenderable(), "IsRenderable")
		})
	}
}

func TestProgressGeometryClamping(t *testing.T) {
	t.Run("ring", func(t *testing.T) {
		p := RingProgress().WithGeometry(500, 0, 0.2)
		assert.Equal(t, 48.0, p.Diameter)
		assert.Equal(t, 1.0, p.Thickness)
	})

	t.Run("bar", func(t *testing.T) {
		p := BarProgress().WithGeometry(0, 1000, 100)
		assert.Equal(t, 200.0, p.Width)
		assert.Equal(t, 16.0, p.Thickness)
	})

	t.Run("normalize fills ring defaults", func(t *testing.T) {
		p := Progress{Kind: ProgressRing}.normalized()
		assert.Equal(t, 22.0, p.Diameter)
		assert.Equal(t, 3.0, p.Thickness)
	})
}
