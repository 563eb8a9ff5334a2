package descriptor

import "encoding/json"

// LiquidGlass selects one of the host's discrete glass rendering styles.
type LiquidGlass int

// NewLiquidGlass clamps the style index to the host-defined range [0,19].
func NewLiquidGlass(variant int) LiquidGlass {
	return LiquidGlass(clampInt(variant, minGlassVariant, maxGlass))
}

// Border outlines a content surface. Width is clamped to [0,6].
type Border struct {
	Width float64 `json:"width"`
	Color Color   `json:"color"`
}

// NewBorder builds a border style.
func NewBorder(width float64, color Color) Border {
	return Border{Width: clamp(width, minBorderWidth, maxBorder), Color: color.normalized()}
}

func (b Border) normalized() Border {
	return NewBorder(b.Width, b.Color)
}

// Shadow adds depth behind a content surface. Radius is clamped to [0,60] and
// each offset axis to [-80,80].
type Shadow struct {
	Radius  float64 `json:"radius"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Color   Color   `json:"color"`
}

// NewShadow builds a shadow style.
func NewShadow(radius, offsetX, offsetY float64, color Color) Shadow {
	return Shadow{
		Radius:  clamp(radius, minShadowRadius, maxShadowR),
		OffsetX: clamp(offsetX, minShadowOffset, maxShadowO),
		OffsetY: clamp(offsetY, minShadowOffset, maxShadowO),
		Color:   color.normalized(),
	}
}

func (s Shadow) normalized() Shadow {
	return NewShadow(s.Radius, s.OffsetX, s.OffsetY, s.Color)
}

// Insets pads content from its container edges. Each side is clamped to [0,96].
type Insets struct {
	Top      float64 `json:"top"`
	Leading  float64 `json:"leading"`
	Bottom   float64 `json:"bottom"`
	Trailing float64 `json:"trailing"`
}

// NewInsets builds content insets.
func NewInsets(top, leading, bottom, trailing float64) Insets {
	return Insets{
		Top:      clamp(top, minInset, maxInset),
		Leading:  clamp(leading, minInset, maxInset),
		Bottom:   clamp(bottom, minInset, maxInset),
		Trailing: clamp(trailing, minInset, maxInset),
	}
}

// UniformInsets pads all four sides equally.
func UniformInsets(all float64) Insets {
	return NewInsets(all, all, all, all)
}

func (i Insets) normalized() Insets {
	return NewInsets(i.Top, i.Leading, i.Bottom, i.Trailing)
}

// Appearance tunes how the host draws a surface. Every numeric field is
// clamped at construction, so an Appearance is structurally always valid.
type Appearance struct {
	Opacity float64     `json:"opacity"`
	Glass   LiquidGlass `json:"glass"`
	Border  *Border     `json:"border,omitempty"`
	Shadow  *Shadow     `json:"shadow,omitempty"`
	Insets  *Insets     `json:"insets,omitempty"`
}

// NewAppearance builds appearance options with the given opacity, clamped to
// [0,1].
func NewAppearance(opacity float64) Appearance {
	return Appearance{Opacity: clamp01(opacity)}
}

// DefaultAppearance is fully opaque with the first glass variant.
func DefaultAppearance() Appearance {
	return Appearance{Opacity: 1}
}

// WithGlass returns a copy with the glass variant replaced (clamped).
func (a Appearance) WithGlass(variant int) Appearance {
	a.Glass = NewLiquidGlass(variant)
	return a
}

// WithBorder returns a copy with a border.
func (a Appearance) WithBorder(b Border) Appearance {
	nb := b.normalized()
	a.Border = &nb
	return a
}

// WithShadow returns a copy with a shadow.
func (a Appearance) WithShadow(s Shadow) Appearance {
	ns := s.normalized()
	a.Shadow = &ns
	return a
}

// WithInsets returns a copy with content insets.
func (a Appearance) WithInsets(i Insets) Appearance {
	ni := i.normalized()
	a.Insets = &ni
	return a
}

// IsValid reports structural validity. All fields are range-clamped, so this
// never fails; it exists so containers can compose validity uniformly.
func (a Appearance) IsValid() bool {
	return true
}

// UnmarshalJSON decodes on top of the documented defaults so an omitted
// opacity reads as fully opaque while an explicit zero survives.
func (a *Appearance) UnmarshalJSON(data []byte) error {
	type plain Appearance
	tmp := plain(DefaultAppearance())
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*a = Appearance(tmp)
	return nil
}

// normalized re-clamps a wire-decoded appearance.
func (a Appearance) normalized() Appearance {
	a.Opacity = clamp01(a.Opacity)
	a.Glass = NewLiquidGlass(int(a.Glass))
	if a.Border != nil {
		nb := a.Border.normalized()
		a.Border = &nb
	}
	if a.Shadow != nil {
		ns := a.Shadow.normalized()
		a.Shadow = &ns
	}
	if a.Insets != nil {
		ni := a.Insets.normalized()
		a.Insets = &ni
	}
	return a
}
