package descriptor

import (
	"errors"
	"time"
)

// SneakPeek configures the transient, host-policy-gated preview of a live
// activity, optionally overriding its title and subtitle for the peek.
type SneakPeek struct {
	Enabled  bool   `json:"enabled"`
	Title    string `json:"title,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`
}

// LiveActivity describes one ongoing-task presentation in the notch area.
//
// The trailing slot is contended: a renderable progress indicator and a
// non-none trailing content are mutually exclusive. The leading slot may be
// overridden only by a leading-compatible trailing variant (icon, animation).
type LiveActivity struct {
	// ID is the caller-chosen identity, unique within the bundle.
	ID       string `json:"id"`
	BundleID string `json:"bundle_id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	// Priority orders competing presentations; higher wins.
	Priority    int      `json:"priority,omitempty"`
	LeadingIcon Icon     `json:"leading_icon"`
	Trailing    Trailing `json:"trailing"`
	Indicator   Progress `json:"indicator"`
	// Progress is the completion fraction shown by the indicator, in [0,1].
	Progress float64 `json:"progress"`
	Accent   Color   `json:"accent_color"`
	Badge    *Icon   `json:"badge_icon,omitempty"`
	// CoexistWithMusic keeps the activity visible alongside media playback.
	CoexistWithMusic bool `json:"coexist_with_music,omitempty"`
	// DurationHint tells the host how long the activity expects to run.
	DurationHint time.Duration     `json:"duration_hint,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	// LeadingOverride replaces the leading icon with a trailing-content
	// variant; only icon and animation are legal there.
	LeadingOverride *Trailing  `json:"leading_override,omitempty"`
	CenterStyle     *TextStyle `json:"center_style,omitempty"`
	SneakPeek       *SneakPeek `json:"sneak_peek,omitempty"`
}

// NewLiveActivity builds an activity with the documented defaults: no icon, no
// trailing content, no indicator, zero progress, accent-colored.
func NewLiveActivity(id, bundleID, title string) LiveActivity {
	a := DefaultLiveActivity()
	a.ID = id
	a.BundleID = bundleID
	a.Title = title
	return a
}

// DefaultLiveActivity is the zero-identity template carrying every documented
// field default; wire decoding overlays payloads onto it.
func DefaultLiveActivity() LiveActivity {
	return LiveActivity{
		LeadingIcon: NoIcon(),
		Trailing:    NoTrailing(),
		Indicator:   NoProgress(),
		Accent:      Accent(),
	}
}

// WithSubtitle returns a copy with a subtitle.
func (a LiveActivity) WithSubtitle(subtitle string) LiveActivity {
	a.Subtitle = subtitle
	return a
}

// WithPriority returns a copy with a priority ordinal.
func (a LiveActivity) WithPriority(priority int) LiveActivity {
	a.Priority = priority
	return a
}

// WithLeadingIcon returns a copy with the leading icon replaced.
func (a LiveActivity) WithLeadingIcon(icon Icon) LiveActivity {
	a.LeadingIcon = icon.normalized()
	return a
}

// WithTrailing returns a copy with the trailing slot replaced.
func (a LiveActivity) WithTrailing(t Trailing) LiveActivity {
	a.Trailing = t.normalized()
	return a
}

// WithIndicator returns a copy with the progress indicator replaced.
func (a LiveActivity) WithIndicator(p Progress) LiveActivity {
	a.Indicator = p.normalized()
	return a
}

// WithProgress returns a copy with the completion fraction replaced (clamped).
func (a LiveActivity) WithProgress(fraction float64) LiveActivity {
	a.Progress = clamp01(fraction)
	return a
}

// WithAccent returns a copy with the accent color replaced.
func (a LiveActivity) WithAccent(c Color) LiveActivity {
	a.Accent = c.normalized()
	return a
}

// WithBadge returns a copy with a badge icon.
func (a LiveActivity) WithBadge(icon Icon) LiveActivity {
	ic := icon.normalized()
	a.Badge = &ic
	return a
}

// WithMusicCoexistence returns a copy that stays visible during playback.
func (a LiveActivity) WithMusicCoexistence() LiveActivity {
	a.CoexistWithMusic = true
	return a
}

// WithDurationHint returns a copy with an expected runtime.
func (a LiveActivity) WithDurationHint(d time.Duration) LiveActivity {
	a.DurationHint = d
	return a
}

// WithMetadata returns a copy with the free-form metadata replaced.
func (a LiveActivity) WithMetadata(meta map[string]string) LiveActivity {
	a.Metadata = copyMeta(meta)
	return a
}

// WithLeadingOverride returns a copy whose leading slot shows the given
// trailing-content variant instead of the leading icon.
func (a LiveActivity) WithLeadingOverride(t Trailing) LiveActivity {
	nt := t.normalized()
	a.LeadingOverride = &nt
	return a
}

// WithCenterStyle returns a copy with explicit center-text styling.
func (a LiveActivity) WithCenterStyle(s TextStyle) LiveActivity {
	ns := s.normalized()
	a.CenterStyle = &ns
	return a
}

// WithSneakPeek returns a copy with a sneak-peek configuration.
func (a LiveActivity) WithSneakPeek(p SneakPeek) LiveActivity {
	a.SneakPeek = &p
	return a
}

// Validate reports the first structural problem, or nil. Construction never
// fails; this is the explicit check callers (and the client) run before
// transport.
func (a LiveActivity) Validate() error {
	switch {
	case a.ID == "":
		return errors.New("live activity: id must not be empty")
	case a.BundleID == "":
		return errors.New("live activity: bundle id must not be empty")
	case a.Title == "":
		return errors.New("live activity: title must not be empty")
	case !a.LeadingIcon.IsValid():
		return errors.New("live activity: leading icon is invalid")
	case !a.Trailing.IsValid():
		return errors.New("live activity: trailing content is invalid")
	case !a.Indicator.IsValid():
		return errors.New("live activity: progress indicator is invalid")
	case a.Indicator.IsRenderable() && !a.Trailing.IsNone():
		return errors.New("live activity: progress indicator and trailing content are mutually exclusive")
	case a.Badge != nil && !a.Badge.IsValid():
		return errors.New("live activity: badge icon is invalid")
	}
	if a.LeadingOverride != nil {
		if !a.LeadingOverride.IsValid() {
			return errors.New("live activity: leading override is invalid")
		}
		if !a.LeadingOverride.IsLeadingCompatible() {
			return errors.New("live activity: leading override must be an icon or animation")
		}
	}
	return nil
}

// IsValid reports whether Validate passes.
func (a LiveActivity) IsValid() bool {
	return a.Validate() == nil
}

// Normalized re-applies construction-time clamping and kind canonicalization
// to wire-decoded values.
func (a LiveActivity) Normalized() LiveActivity {
	a.LeadingIcon = a.LeadingIcon.normalized()
	a.Trailing = a.Trailing.normalized()
	a.Indicator = a.Indicator.normalized()
	a.Progress = clamp01(a.Progress)
	a.Accent = a.Accent.normalized()
	if a.Badge != nil {
		b := a.Badge.normalized()
		a.Badge = &b
	}
	if a.LeadingOverride != nil {
		t := a.LeadingOverride.normalized()
		a.LeadingOverride = &t
	}
	if a.CenterStyle != nil {
		s := a.CenterStyle.normalized()
		a.CenterStyle = &s
	}
	return a
}

func copyMeta(meta map[string]string) map[string]string {
	if len(meta) == 0 {
		return nil
	}
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	return out
}
