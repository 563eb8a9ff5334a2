package descriptor

import "math"

// Payload and collection limits enforced by validity checks (in bytes unless noted).
const (
	MaxInlinePayload    = 5242880 // 5 MiB - inline image/animation payload cap
	MaxWebContentBytes  = 20000   // embedded HTML cap
	MaxGraphPoints      = 100
	MaxSectionElements  = 6
	MaxTabSections      = 6
	MaxMinimalSections  = 3
	MaxTabFootnoteRunes = 140
	MaxHeadlineRunes    = 80
	MaxMinSubtitleRunes = 120
	MaxSectionTitle     = 80
	MaxSectionSubtitle  = 160
)

// Geometry bounds applied by construction-time clamping (inclusive).
const (
	MaxWidgetWidth  = 640
	MaxWidgetHeight = 360

	minOffsetY, maxOffsetY       = -400, 400
	minOffsetX, maxOffsetX       = -600, 600
	minCornerRadius, maxCorner   = 0, 32
	minBorderWidth, maxBorder    = 0, 6
	minShadowRadius, maxShadowR  = 0, 60
	minShadowOffset, maxShadowO  = -80, 80
	minInset, maxInset           = 0, 96
	minGlassVariant, maxGlass    = 0, 19
	minWebHeight, maxWebHeight   = 40, 420
	minWebWidth, maxWebWidth     = 40, 640
	minTabHeight, maxTabHeight   = 160, 420
	minSpacerLen, maxSpacerLen   = 0, 200
	minRingDiameter, maxRingDiam = 12, 48
	minRingStroke, maxRingStroke = 1, 10
	minBarWidth, maxBarWidth     = 40, 200
	minBarStroke, maxBarStroke   = 2, 16
	minSpectrumBars, maxSpectrum = 3, 12
	minMarqueeSpeed, maxMarquee  = 0.25, 3
)

// clamp bounds v to the inclusive range [lo, hi]. NaN maps to lo so a garbage
// input still produces a legal value.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// clamp01 bounds v to the unit interval.
func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}
