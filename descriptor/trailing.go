package descriptor

import "time"

// TrailingKind discriminates the trailing-content union.
type TrailingKind string

const (
	TrailingNone      TrailingKind = "none"
	TrailingText      TrailingKind = "text"
	TrailingMarquee   TrailingKind = "marquee"
	TrailingCountdown TrailingKind = "countdown"
	TrailingIcon      TrailingKind = "icon"
	TrailingSpectrum  TrailingKind = "spectrum"
	TrailingAnimation TrailingKind = "animation"
)

// Trailing is the content occupying a live activity's right-side slot. A
// subset of its variants (icon, animation) may also override the leading slot.
// A zero Trailing behaves as TrailingNone.
type Trailing struct {
	Kind TrailingKind `json:"kind"`
	// Text is the content for the text and marquee variants.
	Text  string `json:"text,omitempty"`
	Font  *Font  `json:"font,omitempty"`
	Color *Color `json:"color,omitempty"`
	// Speed scales marquee scrolling; 1 is the host default.
	Speed float64 `json:"speed,omitempty"`
	// Until is the countdown deadline.
	Until *time.Time `json:"until,omitempty"`
	// Icon is the payload for the icon variant.
	Icon *Icon `json:"icon,omitempty"`
	// Bars is the spectrum visualization bar count.
	Bars int `json:"bars,omitempty"`
	// Data is the inline payload for the animation variant.
	Data []byte `json:"data,omitempty"`
}

// NoTrailing returns the empty variant.
func NoTrailing() Trailing {
	return Trailing{Kind: TrailingNone}
}

// TextTrailing shows static text.
func TextTrailing(text string) Trailing {
	return Trailing{Kind: TrailingText, Text: text}
}

// MarqueeTrailing shows horizontally scrolling text.
func MarqueeTrailing(text string) Trailing {
	return Trailing{Kind: TrailingMarquee, Text: text, Speed: 1}
}

// CountdownTrailing shows time remaining until the deadline.
func CountdownTrailing(until time.Time) Trailing {
	return Trailing{Kind: TrailingCountdown, Until: &until}
}

// IconTrailing shows an icon.
func IconTrailing(icon Icon) Trailing {
	ic := icon.normalized()
	return Trailing{Kind: TrailingIcon, Icon: &ic}
}

// SpectrumTrailing shows an audio-spectrum visualization with the default bar
// count.
func SpectrumTrailing() Trailing {
	return Trailing{Kind: TrailingSpectrum, Bars: 5}
}

// AnimationTrailing shows inline animation bytes.
func AnimationTrailing(data []byte) Trailing {
	return Trailing{Kind: TrailingAnimation, Data: data}
}

// WithFont returns a copy with explicit typography for textual variants.
func (t Trailing) WithFont(f Font) Trailing {
	nf := f.normalized()
	t.Font = &nf
	return t
}

// WithColor returns a copy with an explicit content color.
func (t Trailing) WithColor(c Color) Trailing {
	nc := c.normalized()
	t.Color = &nc
	return t
}

// WithSpeed returns a copy with the marquee speed replaced (clamped).
func (t Trailing) WithSpeed(speed float64) Trailing {
	t.Speed = clamp(speed, minMarqueeSpeed, maxMarquee)
	return t
}

// WithBars returns a copy with the spectrum bar count replaced (clamped).
func (t Trailing) WithBars(bars int) Trailing {
	t.Bars = clampInt(bars, minSpectrumBars, maxSpectrum)
	return t
}

// IsNone reports whether the slot renders nothing.
func (t Trailing) IsNone() bool {
	return t.Kind == TrailingNone || t.Kind == ""
}

// IsLeadingCompatible reports whether the variant may override the leading
// slot. Only icon and animation make sense on the left side.
func (t Trailing) IsLeadingCompatible() bool {
	return t.Kind == TrailingIcon || t.Kind == TrailingAnimation
}

// IsValid reports structural validity per variant.
func (t Trailing) IsValid() bool {
	switch t.Kind {
	case TrailingNone, "", TrailingSpectrum:
		return true
	case TrailingText, TrailingMarquee:
		return t.Text != ""
	case TrailingCountdown:
		return t.Until != nil && !t.Until.IsZero()
	case TrailingIcon:
		return t.Icon != nil && !t.Icon.IsNone() && t.Icon.IsValid()
	case TrailingAnimation:
		return len(t.Data) > 0 && len(t.Data) <= MaxInlinePayload
	default:
		return false
	}
}

// normalized fills variant defaults and re-clamps wire-decoded values.
func (t Trailing) normalized() Trailing {
	if t.Kind == "" {
		t.Kind = TrailingNone
	}
	switch t.Kind {
	case TrailingMarquee:
		if t.Speed == 0 {
			t.Speed = 1
		}
		t.Speed = clamp(t.Speed, minMarqueeSpeed, maxMarquee)
	case TrailingSpectrum:
		if t.Bars == 0 {
			t.Bars = 5
		}
		t.Bars = clampInt(t.Bars, minSpectrumBars, maxSpectrum)
	}
	if t.Font != nil {
		nf := t.Font.normalized()
		t.Font = &nf
	}
	if t.Color != nil {
		nc := t.Color.normalized()
		t.Color = &nc
	}
	if t.Icon != nil {
		ni := t.Icon.normalized()
		t.Icon = &ni
	}
	return t
}
