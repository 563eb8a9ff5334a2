package descriptor

import (
	"errors"
	"fmt"
)

// WidgetLayout selects a lock-screen widget's base shape.
type WidgetLayout string

const (
	LayoutInline   WidgetLayout = "inline"
	LayoutCircular WidgetLayout = "circular"
	LayoutCard     WidgetLayout = "card"
	LayoutCustom   WidgetLayout = "custom"
)

// Material selects the widget backdrop treatment.
type Material string

const (
	MaterialFrosted         Material = "frosted"
	MaterialLiquid          Material = "liquid"
	MaterialSolid           Material = "solid"
	MaterialSemiTransparent Material = "semi_transparent"
	MaterialClear           Material = "clear"
)

// Alignment anchors a widget on the lock screen's 3x3 grid.
type Alignment string

const (
	AlignTopLeading     Alignment = "top_leading"
	AlignTop            Alignment = "top"
	AlignTopTrailing    Alignment = "top_trailing"
	AlignLeading        Alignment = "leading"
	AlignCenter         Alignment = "center"
	AlignTrailing       Alignment = "trailing"
	AlignBottomLeading  Alignment = "bottom_leading"
	AlignBottom         Alignment = "bottom"
	AlignBottomTrailing Alignment = "bottom_trailing"
)

// EdgeMode controls whether offsets may push the widget past screen edges.
type EdgeMode string

const (
	// EdgeClamp keeps the widget fully on screen regardless of offsets.
	EdgeClamp EdgeMode = "clamp"
	// EdgeFree honors offsets verbatim, allowing partial off-screen placement.
	EdgeFree EdgeMode = "free"
)

// Position places a widget relative to its alignment anchor. Vertical offsets
// clamp to [-400,400], horizontal to [-600,600].
type Position struct {
	Alignment Alignment `json:"alignment"`
	OffsetX   float64   `json:"offset_x"`
	OffsetY   float64   `json:"offset_y"`
	Edge      EdgeMode  `json:"edge_mode"`
}

// NewPosition builds a clamped position.
func NewPosition(alignment Alignment, offsetX, offsetY float64) Position {
	return Position{
		Alignment: alignment,
		OffsetX:   clamp(offsetX, minOffsetX, maxOffsetX),
		OffsetY:   clamp(offsetY, minOffsetY, maxOffsetY),
		Edge:      EdgeClamp,
	}.normalized()
}

// WithEdgeMode returns a copy with the edge behavior replaced.
func (p Position) WithEdgeMode(mode EdgeMode) Position {
	p.Edge = mode
	return p.normalized()
}

func (p Position) normalized() Position {
	switch p.Alignment {
	case AlignTopLeading, AlignTop, AlignTopTrailing,
		AlignLeading, AlignCenter, AlignTrailing,
		AlignBottomLeading, AlignBottom, AlignBottomTrailing:
	default:
		p.Alignment = AlignCenter
	}
	if p.Edge != EdgeFree {
		p.Edge = EdgeClamp
	}
	p.OffsetX = clamp(p.OffsetX, minOffsetX, maxOffsetX)
	p.OffsetY = clamp(p.OffsetY, minOffsetY, maxOffsetY)
	return p
}

// Size is a widget's explicit dimensions in points. Bounds (0 < w <= 640,
// 0 < h <= 360) are validity rules, not clamps: a caller asking for an
// impossible surface is told so rather than silently resized.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewSize builds an explicit size.
func NewSize(width, height float64) Size {
	return Size{Width: width, Height: height}
}

// IsZero reports an unset size, which resolves to the layout default.
func (s Size) IsZero() bool {
	return s.Width == 0 && s.Height == 0
}

func (s Size) inBounds() bool {
	return s.Width > 0 && s.Width <= MaxWidgetWidth &&
		s.Height > 0 && s.Height <= MaxWidgetHeight
}

// DefaultSize returns the style-specific size used when none is given.
func DefaultSize(layout WidgetLayout) Size {
	switch layout {
	case LayoutCircular:
		return Size{Width: 120, Height: 120}
	case LayoutCard:
		return Size{Width: 360, Height: 200}
	case LayoutCustom:
		return Size{Width: 320, Height: 180}
	default:
		return Size{Width: 320, Height: 64}
	}
}

// LockWidget describes one lock-screen widget presentation.
type LockWidget struct {
	ID       string       `json:"id"`
	BundleID string       `json:"bundle_id"`
	Layout   WidgetLayout `json:"layout"`
	Position Position     `json:"position"`
	// Size is explicit or, when zero, the layout default.
	Size       Size        `json:"size"`
	Material   Material    `json:"material"`
	Appearance *Appearance `json:"appearance,omitempty"`
	// CornerRadius is clamped to [0,32].
	CornerRadius float64 `json:"corner_radius"`
	// Elements is the ordered content; validity requires at least one entry.
	Elements []Element `json:"elements"`
	Accent   Color     `json:"accent_color"`
	// DismissOnUnlock removes the widget when the user unlocks.
	DismissOnUnlock bool              `json:"dismiss_on_unlock,omitempty"`
	Priority        int               `json:"priority,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewLockWidget builds a widget with the layout's default size, frosted
// material, and centered position.
func NewLockWidget(id, bundleID string, layout WidgetLayout, elements ...Element) LockWidget {
	w := DefaultLockWidget()
	w.ID = id
	w.BundleID = bundleID
	w.Layout = layout
	w.Size = DefaultSize(layout)
	w.Elements = normalizedElements(elements)
	return w
}

// DefaultLockWidget is the zero-identity template carrying every documented
// field default; wire decoding overlays payloads onto it. Its size stays zero
// so the layout default can resolve after the payload's layout is known.
func DefaultLockWidget() LockWidget {
	return LockWidget{
		Layout:       LayoutInline,
		Position:     Position{Alignment: AlignCenter, Edge: EdgeClamp},
		Material:     MaterialFrosted,
		CornerRadius: 12,
		Accent:       Accent(),
	}
}

// WithPosition returns a copy with the position replaced.
func (w LockWidget) WithPosition(p Position) LockWidget {
	w.Position = p.normalized()
	return w
}

// WithSize returns a copy with an explicit size.
func (w LockWidget) WithSize(s Size) LockWidget {
	w.Size = s
	return w
}

// WithMaterial returns a copy with the backdrop material replaced.
func (w LockWidget) WithMaterial(m Material) LockWidget {
	w.Material = m
	return w.normalizedMaterial()
}

// WithAppearance returns a copy with appearance overrides.
func (w LockWidget) WithAppearance(a Appearance) LockWidget {
	na := a.normalized()
	w.Appearance = &na
	return w
}

// WithCornerRadius returns a copy with the corner radius replaced (clamped).
func (w LockWidget) WithCornerRadius(radius float64) LockWidget {
	w.CornerRadius = clamp(radius, minCornerRadius, maxCorner)
	return w
}

// WithAccent returns a copy with the accent color replaced.
func (w LockWidget) WithAccent(c Color) LockWidget {
	w.Accent = c.normalized()
	return w
}

// WithDismissOnUnlock returns a copy removed at unlock.
func (w LockWidget) WithDismissOnUnlock() LockWidget {
	w.DismissOnUnlock = true
	return w
}

// WithPriority returns a copy with a priority ordinal.
func (w LockWidget) WithPriority(priority int) LockWidget {
	w.Priority = priority
	return w
}

// WithMetadata returns a copy with the free-form metadata replaced.
func (w LockWidget) WithMetadata(meta map[string]string) LockWidget {
	w.Metadata = copyMeta(meta)
	return w
}

// Validate reports the first structural problem, or nil.
func (w LockWidget) Validate() error {
	switch {
	case w.ID == "":
		return errors.New("lock widget: id must not be empty")
	case w.BundleID == "":
		return errors.New("lock widget: bundle id must not be empty")
	case len(w.Elements) == 0:
		return errors.New("lock widget: content elements must not be empty")
	case !w.resolvedSize().inBounds():
		return errors.New("lock widget: size must be positive and within 640x360")
	case w.Appearance != nil && !w.Appearance.IsValid():
		return errors.New("lock widget: appearance is invalid")
	}
	for i, el := range w.Elements {
		if !el.IsValid() {
			return fmt.Errorf("lock widget: content element %d is invalid", i)
		}
	}
	return nil
}

// IsValid reports whether Validate passes.
func (w LockWidget) IsValid() bool {
	return w.Validate() == nil
}

// Normalized re-applies construction-time clamping and default substitution
// to wire-decoded values. An unset size resolves to the layout default.
func (w LockWidget) Normalized() LockWidget {
	w = w.normalizedMaterial()
	switch w.Layout {
	case LayoutInline, LayoutCircular, LayoutCard, LayoutCustom:
	default:
		w.Layout = LayoutInline
	}
	w.Position = w.Position.normalized()
	w.Size = w.resolvedSize()
	w.CornerRadius = clamp(w.CornerRadius, minCornerRadius, maxCorner)
	w.Elements = normalizedElements(w.Elements)
	w.Accent = w.Accent.normalized()
	if w.Appearance != nil {
		na := w.Appearance.normalized()
		w.Appearance = &na
	}
	return w
}

func (w LockWidget) resolvedSize() Size {
	if w.Size.IsZero() {
		return DefaultSize(w.Layout)
	}
	return w.Size
}

func (w LockWidget) normalizedMaterial() LockWidget {
	switch w.Material {
	case MaterialFrosted, MaterialLiquid, MaterialSolid, MaterialSemiTransparent, MaterialClear:
	default:
		w.Material = MaterialFrosted
	}
	return w
}
