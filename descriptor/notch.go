package descriptor

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// TabConfig describes the expanded notch presentation: a titled tab the user
// can open, carrying sections, optional web content and a footnote line.
type TabConfig struct {
	Title    string `json:"title"`
	Footnote string `json:"footnote,omitempty"`

	Icon  *Icon `json:"icon,omitempty"`
	Badge *Icon `json:"badge_icon,omitempty"`

	Height     float64     `json:"height"`
	Appearance *Appearance `json:"appearance,omitempty"`

	Sections []Section   `json:"sections,omitempty"`
	Web      *WebContent `json:"web_content,omitempty"`

	AllowInteraction bool `json:"allow_interaction,omitempty"`
}

// NewTabConfig builds a tab with the default height.
func NewTabConfig(title string, sections ...Section) TabConfig {
	return TabConfig{Title: title, Height: 240, Sections: normalizedSections(sections)}
}

// WithIcon returns a copy with a tab icon.
func (t TabConfig) WithIcon(icon Icon) TabConfig {
	ic := icon.normalized()
	t.Icon = &ic
	return t
}

// WithBadge returns a copy with a badge icon.
func (t TabConfig) WithBadge(icon Icon) TabConfig {
	b := icon.normalized()
	t.Badge = &b
	return t
}

// WithHeight returns a copy with the expanded height replaced (clamped).
func (t TabConfig) WithHeight(height float64) TabConfig {
	t.Height = clamp(height, minTabHeight, maxTabHeight)
	return t
}

// WithAppearance returns a copy with explicit container styling.
func (t TabConfig) WithAppearance(a Appearance) TabConfig {
	ap := a.normalized()
	t.Appearance = &ap
	return t
}

// WithWeb returns a copy embedding web content below the sections.
func (t TabConfig) WithWeb(w WebContent) TabConfig {
	web := w.normalized()
	t.Web = &web
	return t
}

// WithFootnote returns a copy with a footnote line.
func (t TabConfig) WithFootnote(footnote string) TabConfig {
	t.Footnote = footnote
	return t
}

// WithInteraction returns a copy that accepts pointer events while expanded.
func (t TabConfig) WithInteraction() TabConfig {
	t.AllowInteraction = true
	return t
}

// Validate reports the first structural problem, or nil.
func (t TabConfig) Validate() error {
	switch {
	case t.Title == "":
		return errors.New("notch tab: title must not be empty")
	case utf8.RuneCountInString(t.Footnote) > MaxTabFootnoteRunes:
		return fmt.Errorf("notch tab: footnote exceeds %d characters", MaxTabFootnoteRunes)
	case t.Icon != nil && !t.Icon.IsValid():
		return errors.New("notch tab: icon is invalid")
	case t.Badge != nil && !t.Badge.IsValid():
		return errors.New("notch tab: badge icon is invalid")
	case len(t.Sections) > MaxTabSections:
		return fmt.Errorf("notch tab: at most %d sections are allowed", MaxTabSections)
	case !allSectionsValid(t.Sections):
		return errors.New("notch tab: a section is invalid")
	case t.Web != nil && !t.Web.IsValid():
		return errors.New("notch tab: web content is invalid")
	}
	return nil
}

func (t TabConfig) normalized() TabConfig {
	if t.Height == 0 {
		t.Height = 240
	}
	t.Height = clamp(t.Height, minTabHeight, maxTabHeight)
	if t.Icon != nil {
		ic := t.Icon.normalized()
		t.Icon = &ic
	}
	if t.Badge != nil {
		b := t.Badge.normalized()
		t.Badge = &b
	}
	if t.Appearance != nil {
		ap := t.Appearance.normalized()
		t.Appearance = &ap
	}
	t.Sections = normalizedSections(t.Sections)
	if t.Web != nil {
		w := t.Web.normalized()
		t.Web = &w
	}
	return t
}

// MinimalConfig describes the collapsed notch presentation shown next to the
// camera housing. Every field is optional.
type MinimalConfig struct {
	Headline string `json:"headline,omitempty"`
	Subtitle string `json:"subtitle,omitempty"`

	Layout   LayoutHint  `json:"layout,omitempty"`
	Sections []Section   `json:"sections,omitempty"`
	Web      *WebContent `json:"web_content,omitempty"`

	HideMusicControls bool `json:"hide_music_controls,omitempty"`
}

// NewMinimalConfig builds a collapsed presentation around the given sections.
func NewMinimalConfig(sections ...Section) MinimalConfig {
	return MinimalConfig{Layout: LayoutStack, Sections: normalizedSections(sections)}
}

// WithHeadline returns a copy with headline and subtitle text.
func (m MinimalConfig) WithHeadline(headline, subtitle string) MinimalConfig {
	m.Headline = headline
	m.Subtitle = subtitle
	return m
}

// WithLayout returns a copy with the section layout hint replaced.
func (m MinimalConfig) WithLayout(layout LayoutHint) MinimalConfig {
	m.Layout = layout
	return m
}

// WithWeb returns a copy embedding web content.
func (m MinimalConfig) WithWeb(w WebContent) MinimalConfig {
	web := w.normalized()
	m.Web = &web
	return m
}

// WithoutMusicControls returns a copy that suppresses the host's playback
// controls while visible.
func (m MinimalConfig) WithoutMusicControls() MinimalConfig {
	m.HideMusicControls = true
	return m
}

// Validate reports the first structural problem, or nil.
func (m MinimalConfig) Validate() error {
	switch {
	case utf8.RuneCountInString(m.Headline) > MaxHeadlineRunes:
		return fmt.Errorf("notch minimal: headline exceeds %d characters", MaxHeadlineRunes)
	case utf8.RuneCountInString(m.Subtitle) > MaxMinSubtitleRunes:
		return fmt.Errorf("notch minimal: subtitle exceeds %d characters", MaxMinSubtitleRunes)
	case len(m.Sections) > MaxMinimalSections:
		return fmt.Errorf("notch minimal: at most %d sections are allowed", MaxMinimalSections)
	case !allSectionsValid(m.Sections):
		return errors.New("notch minimal: a section is invalid")
	case m.Web != nil && !m.Web.IsValid():
		return errors.New("notch minimal: web content is invalid")
	}
	return nil
}

func (m MinimalConfig) normalized() MinimalConfig {
	switch m.Layout {
	case LayoutStack, LayoutColumns, LayoutMetrics:
	default:
		m.Layout = LayoutStack
	}
	m.Sections = normalizedSections(m.Sections)
	if m.Web != nil {
		w := m.Web.normalized()
		m.Web = &w
	}
	return m
}

// NotchExperience describes a persistent presentation anchored to the notch.
// At least one of the Tab and Minimal configurations must be present; the host
// switches between them as the user expands or collapses the notch.
type NotchExperience struct {
	ID       string `json:"id"`
	BundleID string `json:"bundle_id"`

	Priority int               `json:"priority,omitempty"`
	Accent   Color             `json:"accent_color"`
	Metadata map[string]string `json:"metadata,omitempty"`

	Tab     *TabConfig     `json:"tab,omitempty"`
	Minimal *MinimalConfig `json:"minimal,omitempty"`
}

// NewNotchExperience builds an experience with no presentation configured yet.
// Attach at least one of WithTab or WithMinimal before validating.
func NewNotchExperience(id, bundleID string) NotchExperience {
	n := DefaultNotchExperience()
	n.ID = id
	n.BundleID = bundleID
	return n
}

// DefaultNotchExperience is the zero-identity template carrying every
// documented field default; wire decoding overlays payloads onto it.
func DefaultNotchExperience() NotchExperience {
	return NotchExperience{Accent: Accent()}
}

// WithPriority returns a copy with a priority ordinal.
func (n NotchExperience) WithPriority(priority int) NotchExperience {
	n.Priority = priority
	return n
}

// WithAccent returns a copy with the accent color replaced.
func (n NotchExperience) WithAccent(c Color) NotchExperience {
	n.Accent = c.normalized()
	return n
}

// WithMetadata returns a copy with the free-form metadata replaced.
func (n NotchExperience) WithMetadata(meta map[string]string) NotchExperience {
	n.Metadata = copyMeta(meta)
	return n
}

// WithTab returns a copy with the expanded presentation replaced.
func (n NotchExperience) WithTab(t TabConfig) NotchExperience {
	tab := t.normalized()
	n.Tab = &tab
	return n
}

// WithMinimal returns a copy with the collapsed presentation replaced.
func (n NotchExperience) WithMinimal(m MinimalConfig) NotchExperience {
	min := m.normalized()
	n.Minimal = &min
	return n
}

// Validate reports the first structural problem, or nil. Construction never
// fails; this is the explicit check callers (and the client) run before
// transport.
func (n NotchExperience) Validate() error {
	switch {
	case n.ID == "":
		return errors.New("notch experience: id must not be empty")
	case n.BundleID == "":
		return errors.New("notch experience: bundle id must not be empty")
	case n.Tab == nil && n.Minimal == nil:
		return errors.New("notch experience: a tab or minimal configuration is required")
	}
	if n.Tab != nil {
		if err := n.Tab.Validate(); err != nil {
			return err
		}
	}
	if n.Minimal != nil {
		if err := n.Minimal.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// IsValid reports whether Validate passes.
func (n NotchExperience) IsValid() bool {
	return n.Validate() == nil
}

// Normalized re-applies construction-time clamping and kind canonicalization
// to wire-decoded values.
func (n NotchExperience) Normalized() NotchExperience {
	n.Accent = n.Accent.normalized()
	if n.Tab != nil {
		t := n.Tab.normalized()
		n.Tab = &t
	}
	if n.Minimal != nil {
		m := n.Minimal.normalized()
		n.Minimal = &m
	}
	return n
}
