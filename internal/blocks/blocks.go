// Package blocks defines the block content schema of the visual editor and
// the codec between its stored string form and typed content.
package blocks

import (
	"fmt"
	"time"
)

// BlockType tags a block with one of the six supported kinds.
type BlockType string

const (
	TypeHero    BlockType = "hero"
	TypeText    BlockType = "text"
	TypeImage   BlockType = "image"
	TypeButton  BlockType = "button"
	TypeColumns BlockType = "columns"
	TypeFooter  BlockType = "footer"
)

// Types lists every BlockType in library order.
var Types = []BlockType{TypeHero, TypeText, TypeImage, TypeButton, TypeColumns, TypeFooter}

// Valid reports whether t is one of the known block types.
func (t BlockType) Valid() bool {
	switch t {
	case TypeHero, TypeText, TypeImage, TypeButton, TypeColumns, TypeFooter:
		return true
	}
	return false
}

// ParseBlockType converts s to a BlockType, rejecting unknown tags.
func ParseBlockType(s string) (BlockType, error) {
	t := BlockType(s)
	if !t.Valid() {
		return "", fmt.Errorf("blocks: unknown block type %q", s)
	}
	return t, nil
}

// Content is the structured content of a block. Each variant reports the
// BlockType it belongs to.
type Content interface {
	BlockType() BlockType
}

// Hero is a full-width banner with headline and call to action.
type Hero struct {
	Headline        string `json:"headline"`
	Subheadline     string `json:"subheadline"`
	ButtonLabel     string `json:"buttonLabel"`
	ButtonURL       string `json:"buttonUrl"`
	BackgroundImage string `json:"backgroundImage"`
}

// Text is a heading plus paragraph.
type Text struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Image is a single image with alt text and caption.
type Image struct {
	Src     string `json:"src"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

// ButtonVariant selects the button style.
type ButtonVariant string

const (
	VariantPrimary   ButtonVariant = "primary"
	VariantSecondary ButtonVariant = "secondary"
	VariantOutline   ButtonVariant = "outline"
)

// Valid reports whether v is a known variant.
func (v ButtonVariant) Valid() bool {
	switch v {
	case VariantPrimary, VariantSecondary, VariantOutline:
		return true
	}
	return false
}

// Button is a standalone call-to-action button.
type Button struct {
	Label   string        `json:"label"`
	URL     string        `json:"url"`
	Variant ButtonVariant `json:"variant"`
}

// Columns is a two-column layout.
type Columns struct {
	LeftHeading  string `json:"leftHeading"`
	LeftBody     string `json:"leftBody"`
	RightHeading string `json:"rightHeading"`
	RightBody    string `json:"rightBody"`
}

// Footer closes a page.
type Footer struct {
	CompanyName string `json:"companyName"`
	Tagline     string `json:"tagline"`
	Copyright   string `json:"copyright"`
}

func (Hero) BlockType() BlockType    { return TypeHero }
func (Text) BlockType() BlockType    { return TypeText }
func (Image) BlockType() BlockType   { return TypeImage }
func (Button) BlockType() BlockType  { return TypeButton }
func (Columns) BlockType() BlockType { return TypeColumns }
func (Footer) BlockType() BlockType  { return TypeFooter }

// DefaultContent returns the canonical content for t. Unknown tags get the
// text default so callers always receive a renderable value.
func DefaultContent(t BlockType) Content {
	return defaultContentAt(t, time.Now())
}

func defaultContentAt(t BlockType, now time.Time) Content {
	switch t {
	case TypeHero:
		return Hero{
			Headline:        "Welcome to My Website",
			Subheadline:     "Built with WebCraft, the fastest way to create stunning sites",
			ButtonLabel:     "Get Started",
			ButtonURL:       "#",
			BackgroundImage: "",
		}
	case TypeImage:
		return Image{Src: "", Alt: "Image", Caption: ""}
	case TypeButton:
		return Button{Label: "Click Me", URL: "#", Variant: VariantPrimary}
	case TypeColumns:
		return Columns{
			LeftHeading:  "Feature One",
			LeftBody:     "A powerful capability that sets you apart from the competition.",
			RightHeading: "Feature Two",
			RightBody:    "Another incredible feature that your customers will love.",
		}
	case TypeFooter:
		return Footer{
			CompanyName: "My Company",
			Tagline:     "Making the world better, one step at a time.",
			Copyright:   fmt.Sprintf("© %d My Company. All rights reserved.", now.Year()),
		}
	default:
		return Text{
			Heading: "About Us",
			Body:    "We're a team passionate about building great products. Our mission is to make the web more beautiful, one site at a time.",
		}
	}
}
