// Package catalog loads template documents (Markdown with YAML frontmatter)
// into the template store and keeps them in sync with their source.
package catalog

import (
	"bytes"
	"errors"
	"path"
	"regexp"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/starford/webcraft/internal/models"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Document is a parsed template document.
type Document struct {
	Template models.Template
	Order    int
}

// ParseDocument reads a template document. name is the file name, used as
// the id when the frontmatter has none.
//
// Recognised frontmatter keys: id, name, category, tags, previewImageUrl,
// order. The body, minus a leading H1, is the description; an H1 supplies
// the name when the frontmatter does not.
func ParseDocument(name string, data []byte) (*Document, error) {
	fm, body := splitFrontmatter(data)

	id := cast.ToString(fm["id"])
	if id == "" {
		id = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	title, desc := splitTitle(body)
	tname := cast.ToString(fm["name"])
	if tname == "" {
		tname = title
	}
	if tname == "" {
		return nil, errors.New("catalog: document has no name")
	}

	return &Document{
		Template: models.Template{
			ID:              id,
			Name:            tname,
			Category:        cast.ToString(fm["category"]),
			Tags:            extractTags(desc, fm),
			Description:     desc,
			PreviewImageURL: cast.ToString(fm["previewImageUrl"]),
		},
		Order: cast.ToInt(fm["order"]),
	}, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the body. Missing or invalid frontmatter leaves the whole input as body.
func splitFrontmatter(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	return fm, body
}

// splitTitle removes a leading "# " heading from body and returns it
// separately. The remaining text is trimmed.
func splitTitle(body string) (title, rest string) {
	body = strings.TrimSpace(body)
	first, remainder, _ := strings.Cut(body, "\n")
	if h, ok := strings.CutPrefix(strings.TrimSpace(first), "# "); ok {
		return strings.TrimSpace(h), strings.TrimSpace(remainder)
	}
	return "", body
}

// extractTags collects the frontmatter "tags" list followed by inline #tags.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if raw, ok := fm["tags"]; ok {
		for _, item := range cast.ToStringSlice(raw) {
			add(item)
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}
