package descriptor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLiveActivityDefaults(t *testing.T) {
	a := NewLiveActivity("dl-1", "com.example.app", "Downloading")

	assert.Equal(t, "dl-1", a.ID)
	assert.Equal(t, "com.example.app", a.BundleID)
	assert.Equal(t, "Downloading", a.Title)
	assert.True(t, a.LeadingIcon.IsNone())
	assert.True(t, a.Trailing.IsNone())
	assert.False(t, a.Indicator.IsRenderable())
	assert.Zero(t, a.Progress)
	assert.True(t, a.Accent.IsAccent())
	assert.True(t, a.IsValid())
}

func TestLiveActivityValidate(t *testing.T) {
	valid := NewLiveActivity("dl-1", "com.example.app", "Downloading")

	tests := []struct {
		name    string
		a       LiveActivity
		wantErr string
	}{
		{"valid", valid, ""},
		{"missing id", NewLiveActivity("", "com.example.app", "t"), "id must not be empty"},
		{"missing bundle", NewLiveActivity("x", "", "t"), "bundle id must not be empty"},
		{"missing title", NewLiveActivity("x", "com.example.app", ""), "title must not be empty"},
		{
			"bad leading icon",
			valid.WithLeadingIcon(Icon{Kind: IconSymbol}),
			"leading icon is invalid",
		},
		{
			"bad trailing",
			valid.WithTrailing(TextTrailing("")),
			"trailing content is invalid",
		},
		{
			"indicator and trailing contend",
			valid.WithIndicator(RingProgress()).WithTrailing(TextTrailing("2 left")),
			"mutually exclusive",
		},
		{
			"bad badge",
			valid.WithBadge(Icon{Kind: IconImage}),
			"badge icon is invalid",
		},
		{
			"text leading override",
			valid.WithLeadingOverride(TextTrailing("nope")),
			"leading override must be an icon or animation",
		},
		{
			"invalid leading override",
			valid.WithLeadingOverride(Trailing{Kind: TrailingIcon}),
			"leading override is invalid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.a.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				assert.True(t, tt.a.IsValid())
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.False(t, tt.a.IsValid())
		})
	}
}

func TestLiveActivityTrailingIndicatorCoexistence(t *testing.T) {
	base := NewLiveActivity("x", "com.example.app", "t")

	// An indicator alone is fine, trailing alone is fine, and a non-renderable
	// indicator next to trailing content is fine.
	assert.True(t, base.WithIndicator(BarProgress()).IsValid())
	assert.True(t, base.WithTrailing(SpectrumTrailing()).IsValid())
	assert.True(t, base.WithIndicator(NoProgress()).WithTrailing(TextTrailing("ok")).IsValid())
	assert.False(t, base.WithIndicator(PercentProgress()).WithTrailing(SpectrumTrailing()).IsValid())
}

func TestLiveActivityBuilders(t *testing.T) {
	deadline := time.Now().Add(90 * time.Second)
	a := NewLiveActivity("dl-1", "com.example.app", "Downloading").
		WithSubtitle("4 files").
		WithPriority(7).
		WithProgress(2.5).
		WithAccent(RGB(0, 0.5, 1)).
		WithDurationHint(90*time.Second).
		WithTrailing(CountdownTrailing(deadline)).
		WithMusicCoexistence()

	assert.Equal(t, "4 files", a.Subtitle)
	assert.Equal(t, 7, a.Priority)
	assert.Equal(t, 1.0, a.Progress, "progress clamps to the unit interval")
	assert.False(t, a.Accent.IsAccent())
	assert.Equal(t, 90*time.Second, a.DurationHint)
	assert.Equal(t, TrailingCountdown, a.Trailing.Kind)
	assert.True(t, a.CoexistWithMusic)
	assert.True(t, a.IsValid())
}

func TestLiveActivityBuildersDoNotMutate(t *testing.T) {
	base := NewLiveActivity("dl-1", "com.example.app", "Downloading")
	_ = base.WithProgress(0.9).WithSubtitle("changed").WithBadge(SymbolIcon("star"))

	assert.Zero(t, base.Progress)
	assert.Empty(t, base.Subtitle)
	assert.Nil(t, base.Badge)
}

func TestLiveActivityMetadataCopied(t *testing.T) {
	meta := map[string]string{"track": "a"}
	a := NewLiveActivity("x", "b", "t").WithMetadata(meta)
	meta["track"] = "mutated"

	assert.Equal(t, "a", a.Metadata["track"])
	assert.Nil(t, NewLiveActivity("x", "b", "t").WithMetadata(nil).Metadata)
}

func TestLiveActivityNormalized(t *testing.T) {
	a := LiveActivity{
		ID:       "x",
		BundleID: "b",
		Title:    "t",
		Progress: 42,
		Accent:   Color{Red: -3, Green: -9, Blue: -1, Alpha: 5},
		Trailing: Trailing{Kind: TrailingMarquee, Text: "m"},
	}.Normalized()

	assert.Equal(t, 1.0, a.Progress)
	assert.Equal(t, Color{Red: -1, Green: -1, Blue: -1, Alpha: 1}, a.Accent)
	assert.Equal(t, 1.0, a.Trailing.Speed, "marquee speed default filled in")
	assert.Equal(t, IconNone, a.LeadingIcon.Kind, "absent icon kind canonicalized")
}
