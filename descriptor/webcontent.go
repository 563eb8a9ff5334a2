package descriptor

import "strings"

// WebContent embeds a sandboxed HTML payload. The host renders it in an
// isolated web view; the SDK treats the markup as opaque apart from the size
// cap.
type WebContent struct {
	HTML string `json:"html"`
	// Height is the preferred rendered height in points.
	Height      float64 `json:"height"`
	Transparent bool    `json:"transparent,omitempty"`
	// AllowLocalhost permits the sandbox to reach loopback origins.
	AllowLocalhost bool   `json:"allow_localhost,omitempty"`
	Background     *Color `json:"background,omitempty"`
	// MaxWidth constrains the rendered width when non-zero.
	MaxWidth float64 `json:"max_width,omitempty"`
}

// NewWebContent builds a web payload. The markup is trimmed; the preferred
// height is clamped to [40,420].
func NewWebContent(html string, height float64) WebContent {
	return WebContent{
		HTML:   strings.TrimSpace(html),
		Height: clamp(height, minWebHeight, maxWebHeight),
	}
}

// WithBackground returns a copy with an explicit backdrop color.
func (w WebContent) WithBackground(c Color) WebContent {
	nc := c.normalized()
	w.Background = &nc
	return w
}

// WithMaxWidth returns a copy with a width constraint, clamped to [40,640].
func (w WebContent) WithMaxWidth(width float64) WebContent {
	w.MaxWidth = clamp(width, minWebWidth, maxWebWidth)
	return w
}

// WithTransparentBackground returns a copy rendered without a backdrop.
func (w WebContent) WithTransparentBackground() WebContent {
	w.Transparent = true
	return w
}

// IsValid reports whether the trimmed markup is non-empty and within the
// MaxWebContentBytes cap.
func (w WebContent) IsValid() bool {
	trimmed := strings.TrimSpace(w.HTML)
	return trimmed != "" && len(trimmed) <= MaxWebContentBytes
}

// normalized trims and re-clamps a wire-decoded payload. A zero height takes
// the documented default.
func (w WebContent) normalized() WebContent {
	w.HTML = strings.TrimSpace(w.HTML)
	if w.Height == 0 {
		w.Height = 120
	}
	w.Height = clamp(w.Height, minWebHeight, maxWebHeight)
	if w.MaxWidth != 0 {
		w.MaxWidth = clamp(w.MaxWidth, minWebWidth, maxWebWidth)
	}
	if w.Background != nil {
		nc := w.Background.normalized()
		w.Background = &nc
	}
	return w
}
