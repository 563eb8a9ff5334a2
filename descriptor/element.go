package descriptor

// ElementKind discriminates the content element union.
type ElementKind string

const (
	ElementText     ElementKind = "text"
	ElementIcon     ElementKind = "icon"
	ElementProgress ElementKind = "progress"
	ElementGraph    ElementKind = "graph"
	ElementGauge    ElementKind = "gauge"
	ElementSpacer   ElementKind = "spacer"
	ElementDivider  ElementKind = "divider"
	ElementWeb      ElementKind = "web"
)

// Element is one entry in a widget's or section's ordered content list, a
// closed union over the renderable element variants.
type Element struct {
	Kind ElementKind `json:"kind"`
	// Text content and optional typography.
	Text  string `json:"text,omitempty"`
	Font  *Font  `json:"font,omitempty"`
	Color *Color `json:"color,omitempty"`
	// Icon payload.
	Icon *Icon `json:"icon,omitempty"`
	// Progress indicator plus its value; Value doubles as the gauge reading.
	Indicator *Progress `json:"indicator,omitempty"`
	Value     float64   `json:"value,omitempty"`
	// Graph samples and optional stroke color.
	Points []float64 `json:"points,omitempty"`
	Stroke *Color    `json:"stroke,omitempty"`
	// Gauge range.
	GaugeMin float64 `json:"gauge_min,omitempty"`
	GaugeMax float64 `json:"gauge_max,omitempty"`
	// Spacer length in points.
	Length float64 `json:"length,omitempty"`
	// Embedded web payload.
	Web *WebContent `json:"web,omitempty"`
}

// TextElement shows a text row.
func TextElement(text string) Element {
	return Element{Kind: ElementText, Text: text}
}

// IconElement shows an icon row.
func IconElement(icon Icon) Element {
	ic := icon.normalized()
	return Element{Kind: ElementIcon, Icon: &ic}
}

// ProgressElement shows an indicator at the given completion, clamped to [0,1].
func ProgressElement(indicator Progress, value float64) Element {
	ind := indicator.normalized()
	return Element{Kind: ElementProgress, Indicator: &ind, Value: clamp01(value)}
}

// GraphElement shows a line graph of the given samples. Validity requires a
// non-empty series of at most MaxGraphPoints samples; see DownsampleGraph for
// reducing larger buffers.
func GraphElement(points []float64) Element {
	cp := make([]float64, len(points))
	copy(cp, points)
	return Element{Kind: ElementGraph, Points: cp}
}

// GaugeElement shows value on a dial spanning [min, max]. The range is checked
// by IsValid, not clamped, so a reading outside its own scale is reported
// rather than silently moved.
func GaugeElement(min, max, value float64) Element {
	return Element{Kind: ElementGauge, GaugeMin: min, GaugeMax: max, Value: value}
}

// SpacerElement inserts fixed blank space, clamped to [0,200] points.
func SpacerElement(length float64) Element {
	return Element{Kind: ElementSpacer, Length: clamp(length, minSpacerLen, maxSpacerLen)}
}

// DividerElement inserts a separator rule.
func DividerElement() Element {
	return Element{Kind: ElementDivider}
}

// WebElement embeds sandboxed web content.
func WebElement(web WebContent) Element {
	nw := web.normalized()
	return Element{Kind: ElementWeb, Web: &nw}
}

// WithFont returns a copy with explicit typography for the text variant.
func (e Element) WithFont(f Font) Element {
	nf := f.normalized()
	e.Font = &nf
	return e
}

// WithColor returns a copy with an explicit content color.
func (e Element) WithColor(c Color) Element {
	nc := c.normalized()
	e.Color = &nc
	return e
}

// WithStroke returns a copy with an explicit graph stroke color.
func (e Element) WithStroke(c Color) Element {
	nc := c.normalized()
	e.Stroke = &nc
	return e
}

// IsValid reports structural validity per variant.
func (e Element) IsValid() bool {
	switch e.Kind {
	case ElementText:
		return e.Text != ""
	case ElementIcon:
		return e.Icon != nil && !e.Icon.IsNone() && e.Icon.IsValid()
	case ElementProgress:
		return e.Indicator != nil && e.Indicator.IsValid()
	case ElementGraph:
		return len(e.Points) > 0 && len(e.Points) <= MaxGraphPoints
	case ElementGauge:
		return e.GaugeMin < e.GaugeMax && e.Value >= e.GaugeMin && e.Value <= e.GaugeMax
	case ElementSpacer, ElementDivider:
		return true
	case ElementWeb:
		return e.Web != nil && e.Web.IsValid()
	default:
		return false
	}
}

// normalized re-clamps a wire-decoded element.
func (e Element) normalized() Element {
	switch e.Kind {
	case ElementProgress:
		e.Value = clamp01(e.Value)
	case ElementSpacer:
		if e.Length == 0 {
			e.Length = 8
		}
		e.Length = clamp(e.Length, minSpacerLen, maxSpacerLen)
	}
	if e.Font != nil {
		nf := e.Font.normalized()
		e.Font = &nf
	}
	if e.Color != nil {
		nc := e.Color.normalized()
		e.Color = &nc
	}
	if e.Stroke != nil {
		nc := e.Stroke.normalized()
		e.Stroke = &nc
	}
	if e.Icon != nil {
		ni := e.Icon.normalized()
		e.Icon = &ni
	}
	if e.Indicator != nil {
		ind := e.Indicator.normalized()
		e.Indicator = &ind
	}
	if e.Web != nil {
		nw := e.Web.normalized()
		e.Web = &nw
	}
	return e
}

func normalizedElements(elements []Element) []Element {
	if len(elements) == 0 {
		return elements
	}
	out := make([]Element, len(elements))
	for i, el := range elements {
		out[i] = el.normalized()
	}
	return out
}

func allElementsValid(elements []Element) bool {
	for _, el := range elements {
		if !el.IsValid() {
			return false
		}
	}
	return true
}
