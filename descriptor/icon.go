package descriptor

import (
	"github.com/gabriel-vasile/mimetype"
)

// IconKind discriminates the icon union.
type IconKind string

const (
	IconNone      IconKind = "none"
	IconSymbol    IconKind = "symbol"
	IconImage     IconKind = "image"
	IconAppIcon   IconKind = "app_icon"
	IconAnimation IconKind = "animation"
)

// Icon is a closed union over the renderable icon variants. Construct through
// the variant constructors; a zero Icon behaves as IconNone.
//
// Inline payloads are capped at MaxInlinePayload bytes. The cap is checked by
// IsValid only, never at construction.
type Icon struct {
	Kind IconKind `json:"kind"`
	// Name is the host glyph name for IconSymbol.
	Name string `json:"name,omitempty"`
	// Data is the inline payload for IconImage and IconAnimation.
	Data []byte `json:"data,omitempty"`
	// MIME is the sniffed media type of Data, informational for the host.
	MIME string `json:"mime,omitempty"`
	// BundleID selects another application's icon for IconAppIcon.
	BundleID string `json:"bundle_id,omitempty"`
}

// NoIcon returns the empty variant.
func NoIcon() Icon {
	return Icon{Kind: IconNone}
}

// SymbolIcon references a named host glyph.
func SymbolIcon(name string) Icon {
	return Icon{Kind: IconSymbol, Name: name}
}

// ImageIcon carries inline image bytes. The media type is sniffed from the
// payload so the host can pick a decoder without guessing.
func ImageIcon(data []byte) Icon {
	return Icon{Kind: IconImage, Data: data, MIME: sniffMIME(data)}
}

// AppIcon references the icon of the application identified by bundleID.
func AppIcon(bundleID string) Icon {
	return Icon{Kind: IconAppIcon, BundleID: bundleID}
}

// AnimationIcon carries inline animation bytes (e.g. a Lottie document).
func AnimationIcon(data []byte) Icon {
	return Icon{Kind: IconAnimation, Data: data, MIME: sniffMIME(data)}
}

// IsNone reports whether the icon renders nothing.
func (i Icon) IsNone() bool {
	return i.Kind == IconNone || i.Kind == ""
}

// IsValid reports structural validity per variant.
func (i Icon) IsValid() bool {
	switch i.Kind {
	case IconNone, "":
		return true
	case IconSymbol:
		return i.Name != ""
	case IconImage, IconAnimation:
		return len(i.Data) > 0 && len(i.Data) <= MaxInlinePayload
	case IconAppIcon:
		return i.BundleID != ""
	default:
		return false
	}
}

// normalized canonicalizes a wire-decoded icon: an absent kind becomes
// IconNone and a missing MIME is re-sniffed from the payload.
func (i Icon) normalized() Icon {
	if i.Kind == "" {
		i.Kind = IconNone
	}
	if (i.Kind == IconImage || i.Kind == IconAnimation) && i.MIME == "" && len(i.Data) > 0 {
		i.MIME = sniffMIME(i.Data)
	}
	return i
}

func sniffMIME(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return mimetype.Detect(data).String()
}
