package descriptor

import "unicode/utf8"

// LayoutHint suggests how the host arranges a group of elements.
type LayoutHint string

const (
	LayoutStack   LayoutHint = "stack"
	LayoutColumns LayoutHint = "columns"
	LayoutMetrics LayoutHint = "metrics"
)

// Section groups 1 to MaxSectionElements content elements under an optional
// heading inside a notch experience.
type Section struct {
	ID       string     `json:"id,omitempty"`
	Title    string     `json:"title,omitempty"`
	Subtitle string     `json:"subtitle,omitempty"`
	Layout   LayoutHint `json:"layout,omitempty"`
	Elements []Element  `json:"elements"`
}

// NewSection builds a section over the given elements.
func NewSection(elements ...Element) Section {
	return Section{Layout: LayoutStack, Elements: normalizedElements(elements)}
}

// WithID returns a copy with a caller-chosen identifier.
func (s Section) WithID(id string) Section {
	s.ID = id
	return s
}

// WithHeading returns a copy with a title and subtitle.
func (s Section) WithHeading(title, subtitle string) Section {
	s.Title = title
	s.Subtitle = subtitle
	return s
}

// WithLayout returns a copy with a layout hint.
func (s Section) WithLayout(layout LayoutHint) Section {
	s.Layout = layout
	return s
}

// IsValid reports whether the heading limits hold and the element list has 1
// to MaxSectionElements valid entries.
func (s Section) IsValid() bool {
	if utf8.RuneCountInString(s.Title) > MaxSectionTitle {
		return false
	}
	if utf8.RuneCountInString(s.Subtitle) > MaxSectionSubtitle {
		return false
	}
	if len(s.Elements) == 0 || len(s.Elements) > MaxSectionElements {
		return false
	}
	return allElementsValid(s.Elements)
}

func (s Section) normalized() Section {
	switch s.Layout {
	case LayoutStack, LayoutColumns, LayoutMetrics:
	default:
		s.Layout = LayoutStack
	}
	s.Elements = normalizedElements(s.Elements)
	return s
}

func normalizedSections(sections []Section) []Section {
	if len(sections) == 0 {
		return sections
	}
	out := make([]Section, len(sections))
	for i, sec := range sections {
		out[i] = sec.normalized()
	}
	return out
}

func allSectionsValid(sections []Section) bool {
	for _, sec := range sections {
		if !sec.IsValid() {
			return false
		}
	}
	return true
}
