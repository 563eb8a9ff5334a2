package descriptor

// ProgressKind discriminates the progress indicator union.
type ProgressKind string

const (
	ProgressNone      ProgressKind = "none"
	ProgressRing      ProgressKind = "ring"
	ProgressBar       ProgressKind = "bar"
	ProgressPercent   ProgressKind = "percent"
	ProgressCountdown ProgressKind = "countdown"
	ProgressAnimation ProgressKind = "animation"
)

// Progress is a closed union over the progress indicator variants. Geometry
// fields are clamped at construction; a zero Progress behaves as ProgressNone.
type Progress struct {
	Kind ProgressKind `json:"kind"`
	// Diameter is the ring's outer diameter in points.
	Diameter float64 `json:"diameter,omitempty"`
	// Width is the bar's track length in points.
	Width float64 `json:"width,omitempty"`
	// Thickness is the ring stroke or bar height in points.
	Thickness float64 `json:"thickness,omitempty"`
	// Font styles the percent and countdown text variants.
	Font *Font `json:"font,omitempty"`
	// Tint overrides the indicator color; nil inherits the accent.
	Tint *Color `json:"tint,omitempty"`
	// Data is the inline payload for ProgressAnimation.
	Data []byte `json:"data,omitempty"`
}

// NoProgress returns the empty variant.
func NoProgress() Progress {
	return Progress{Kind: ProgressNone}
}

// RingProgress builds a circular indicator with default geometry.
func RingProgress() Progress {
	return Progress{Kind: ProgressRing, Diameter: 22, Thickness: 3}
}

// BarProgress builds a linear indicator with default geometry.
func BarProgress() Progress {
	return Progress{Kind: ProgressBar, Width: 96, Thickness: 6}
}

// PercentProgress builds a numeric percentage readout.
func PercentProgress() Progress {
	return Progress{Kind: ProgressPercent}
}

// CountdownProgress builds a remaining-time readout driven by the activity's
// duration hint.
func CountdownProgress() Progress {
	return Progress{Kind: ProgressCountdown}
}

// AnimationProgress builds an indicator backed by inline animation bytes.
func AnimationProgress(data []byte) Progress {
	return Progress{Kind: ProgressAnimation, Data: data}
}

// WithGeometry returns a copy with explicit dimensions, clamped per variant.
func (p Progress) WithGeometry(diameter, width, thickness float64) Progress {
	p.Diameter = diameter
	p.Width = width
	p.Thickness = thickness
	return p.normalized()
}

// WithFont returns a copy with explicit typography for textual variants.
func (p Progress) WithFont(f Font) Progress {
	nf := f.normalized()
	p.Font = &nf
	return p
}

// WithTint returns a copy with an explicit indicator color.
func (p Progress) WithTint(c Color) Progress {
	nc := c.normalized()
	p.Tint = &nc
	return p
}

// IsRenderable reports whether the indicator occupies the trailing visual slot.
func (p Progress) IsRenderable() bool {
	return p.Kind != ProgressNone && p.Kind != ""
}

// IsValid reports structural validity per variant.
func (p Progress) IsValid() bool {
	switch p.Kind {
	case ProgressNone, "", ProgressRing, ProgressBar, ProgressPercent, ProgressCountdown:
		return true
	case ProgressAnimation:
		return len(p.Data) > 0 && len(p.Data) <= MaxInlinePayload
	default:
		return false
	}
}

// normalized fills unset geometry with the variant defaults, then clamps.
func (p Progress) normalized() Progress {
	if p.Kind == "" {
		p.Kind = ProgressNone
	}
	switch p.Kind {
	case ProgressRing:
		if p.Diameter == 0 {
			p.Diameter = 22
		}
		if p.Thickness == 0 {
			p.Thickness = 3
		}
		p.Diameter = clamp(p.Diameter, minRingDiameter, maxRingDiam)
		p.Thickness = clamp(p.Thickness, minRingStroke, maxRingStroke)
	case ProgressBar:
		if p.Width == 0 {
			p.Width = 96
		}
		if p.Thickness == 0 {
			p.Thickness = 6
		}
		p.Width = clamp(p.Width, minBarWidth, maxBarWidth)
		p.Thickness = clamp(p.Thickness, minBarStroke, maxBarStroke)
	}
	if p.Font != nil {
		nf := p.Font.normalized()
		p.Font = &nf
	}
	if p.Tint != nil {
		nc := p.Tint.normalized()
		p.Tint = &nc
	}
	return p
}
