package blocks

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// ParseContent decodes raw into the content shape selected by tag.
//
// Any JSON object is accepted and projected field by field: missing keys
// stay empty and scalar values are converted to strings. Malformed input and
// JSON values that are not objects yield DefaultContent(tag). ParseContent
// never fails.
func ParseContent(raw string, tag BlockType) Content {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return DefaultContent(tag)
	}
	return project(fields, tag)
}

func project(f map[string]any, tag BlockType) Content {
	s := func(key string) string { return cast.ToString(f[key]) }
	switch tag {
	case TypeHero:
		return Hero{
			Headline:        s("headline"),
			Subheadline:     s("subheadline"),
			ButtonLabel:     s("buttonLabel"),
			ButtonURL:       s("buttonUrl"),
			BackgroundImage: s("backgroundImage"),
		}
	case TypeImage:
		return Image{Src: s("src"), Alt: s("alt"), Caption: s("caption")}
	case TypeButton:
		// The variant is kept verbatim; renderers fall back to primary.
		return Button{Label: s("label"), URL: s("url"), Variant: ButtonVariant(s("variant"))}
	case TypeColumns:
		return Columns{
			LeftHeading:  s("leftHeading"),
			LeftBody:     s("leftBody"),
			RightHeading: s("rightHeading"),
			RightBody:    s("rightBody"),
		}
	case TypeFooter:
		return Footer{CompanyName: s("companyName"), Tagline: s("tagline"), Copyright: s("copyright")}
	default:
		return Text{Heading: s("heading"), Body: s("body")}
	}
}

// SerializeContent encodes c to its storable string form. Output is
// deterministic because every variant is a flat struct of strings.
func SerializeContent(c Content) string {
	if c == nil {
		return "{}"
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// DefaultSerialized returns SerializeContent(DefaultContent(t)).
func DefaultSerialized(t BlockType) string {
	return SerializeContent(DefaultContent(t))
}
