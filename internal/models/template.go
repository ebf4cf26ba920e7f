package models

// Template is a read-only starter in the catalogue.
type Template struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Description     string   `json:"description"`
	PreviewImageURL string   `json:"previewImageUrl"`
}
