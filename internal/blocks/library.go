package blocks

// LibraryItem describes a block type in the editor's block library panel.
type LibraryItem struct {
	Type        BlockType `json:"type"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// Library is the ordered block library.
var Library = []LibraryItem{
	{Type: TypeHero, Label: "Hero", Description: "Full-width banner with headline & CTA", Icon: "Sparkles"},
	{Type: TypeText, Label: "Text", Description: "Rich text paragraph section", Icon: "AlignLeft"},
	{Type: TypeImage, Label: "Image", Description: "Full-width or contained image", Icon: "Image"},
	{Type: TypeButton, Label: "Button", Description: "CTA button", Icon: "MousePointerClick"},
	{Type: TypeColumns, Label: "Columns", Description: "Two-column layout", Icon: "Columns2"},
	{Type: TypeFooter, Label: "Footer", Description: "Page footer with links", Icon: "PanelBottom"},
}

// Label returns the display label for t.
func Label(t BlockType) string {
	for _, item := range Library {
		if item.Type == t {
			return item.Label
		}
	}
	return string(t)
}
