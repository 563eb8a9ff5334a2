package hostsim

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/microcosm-cc/bluemonday"

	"github.com/notchbar/notchbar-go/descriptor"
)

// Sanitizer scrubs embedded web content and verifies inline media before a
// descriptor is stored. HTML goes through a bluemonday UGC policy; icon
// payloads are re-sniffed server-side so a client cannot smuggle arbitrary
// bytes behind a friendly MIME string.
type Sanitizer struct {
	html *bluemonday.Policy
}

// NewSanitizer builds a sanitizer with the UGC policy.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{html: bluemonday.UGCPolicy()}
}

// ScrubActivity verifies a live activity's inline media and returns the
// descriptor unchanged on success. Activities carry no web content.
func (s *Sanitizer) ScrubActivity(a descriptor.LiveActivity) (descriptor.LiveActivity, error) {
	if err := s.verifyIcon("leading_icon", a.LeadingIcon); err != nil {
		return a, err
	}
	if a.Badge != nil {
		if err := s.verifyIcon("badge_icon", *a.Badge); err != nil {
			return a, err
		}
	}
	if a.Trailing.Icon != nil {
		if err := s.verifyIcon("trailing icon", *a.Trailing.Icon); err != nil {
			return a, err
		}
	}
	if a.LeadingOverride != nil && a.LeadingOverride.Icon != nil {
		if err := s.verifyIcon("leading override icon", *a.LeadingOverride.Icon); err != nil {
			return a, err
		}
	}
	return a, nil
}

// ScrubWidget sanitizes web elements and verifies icon payloads across the
// widget's content list.
func (s *Sanitizer) ScrubWidget(w descriptor.LockWidget) (descriptor.LockWidget, error) {
	elements, err := s.scrubElements(w.Elements)
	if err != nil {
		return w, err
	}
	w.Elements = elements
	return w, nil
}

// ScrubExperience sanitizes both notch presentations.
func (s *Sanitizer) ScrubExperience(x descriptor.NotchExperience) (descriptor.NotchExperience, error) {
	if x.Tab != nil {
		tab := *x.Tab
		if tab.Icon != nil {
			if err := s.verifyIcon("tab icon", *tab.Icon); err != nil {
				return x, err
			}
		}
		if tab.Badge != nil {
			if err := s.verifyIcon("tab badge", *tab.Badge); err != nil {
				return x, err
			}
		}
		sections, err := s.scrubSections(tab.Sections)
		if err != nil {
			return x, err
		}
		tab.Sections = sections
		if tab.Web != nil {
			web, err := s.scrubWeb(*tab.Web)
			if err != nil {
				return x, err
			}
			tab.Web = &web
		}
		x.Tab = &tab
	}
	if x.Minimal != nil {
		min := *x.Minimal
		sections, err := s.scrubSections(min.Sections)
		if err != nil {
			return x, err
		}
		min.Sections = sections
		if min.Web != nil {
			web, err := s.scrubWeb(*min.Web)
			if err != nil {
				return x, err
			}
			min.Web = &web
		}
		x.Minimal = &min
	}
	return x, nil
}

func (s *Sanitizer) scrubSections(sections []descriptor.Section) ([]descriptor.Section, error) {
	if len(sections) == 0 {
		return sections, nil
	}
	out := make([]descriptor.Section, len(sections))
	for i, sec := range sections {
		elements, err := s.scrubElements(sec.Elements)
		if err != nil {
			return nil, fmt.Errorf("section %d: %w", i, err)
		}
		sec.Elements = elements
		out[i] = sec
	}
	return out, nil
}

func (s *Sanitizer) scrubElements(elements []descriptor.Element) ([]descriptor.Element, error) {
	if len(elements) == 0 {
		return elements, nil
	}
	out := make([]descriptor.Element, len(elements))
	for i, el := range elements {
		if el.Icon != nil {
			if err := s.verifyIcon(fmt.Sprintf("element %d icon", i), *el.Icon); err != nil {
				return nil, err
			}
		}
		if el.Web != nil {
			web, err := s.scrubWeb(*el.Web)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			el.Web = &web
		}
		out[i] = el
	}
	return out, nil
}

// scrubWeb runs the markup through the UGC policy. Markup that sanitizes to
// nothing was all unsafe content and is rejected rather than rendered blank.
func (s *Sanitizer) scrubWeb(w descriptor.WebContent) (descriptor.WebContent, error) {
	clean := strings.TrimSpace(s.html.Sanitize(w.HTML))
	if clean == "" {
		return w, fmt.Errorf("web content empty after sanitization")
	}
	w.HTML = clean
	return w, nil
}

// verifyIcon re-sniffs inline payloads and checks the detected type against
// the variant. The client-supplied MIME field is advisory only.
func (s *Sanitizer) verifyIcon(field string, icon descriptor.Icon) error {
	switch icon.Kind {
	case descriptor.IconImage:
		mt := mimetype.Detect(icon.Data)
		if !strings.HasPrefix(mt.String(), "image/") {
			return fmt.Errorf("%s: %s payload is not an image", field, mt.String())
		}
	case descriptor.IconAnimation:
		mt := mimetype.Detect(icon.Data)
		if !animationMIME(mt.String()) {
			return fmt.Errorf("%s: %s payload is not a supported animation", field, mt.String())
		}
	}
	return nil
}

// animationMIME accepts Lottie documents (plain or zipped) and animated GIFs.
func animationMIME(mt string) bool {
	switch mt {
	case "application/json", "application/zip", "image/gif":
		return true
	}
	return strings.HasPrefix(mt, "text/plain")
}
