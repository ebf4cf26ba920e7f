// Package render turns editor blocks into HTML for previews.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"strings"

	"github.com/starford/webcraft/internal/blocks"
	"github.com/starford/webcraft/internal/editor"
)

// Viewport selects the preview frame width.
type Viewport string

const (
	Desktop Viewport = "desktop"
	Mobile  Viewport = "mobile"
)

// ParseViewport returns Desktop for anything other than "mobile".
func ParseViewport(s string) Viewport {
	if Viewport(s) == Mobile {
		return Mobile
	}
	return Desktop
}

var variantClass = map[blocks.ButtonVariant]string{
	blocks.VariantPrimary:   "btn btn-primary",
	blocks.VariantSecondary: "btn btn-secondary",
	blocks.VariantOutline:   "btn btn-outline",
}

const blockTemplates = `
{{define "hero"}}<section class="block block-hero" style="{{.Background}}">
  <h1>{{.C.Headline}}</h1>
  <p class="subheadline">{{.C.Subheadline}}</p>
  {{- if .C.ButtonLabel}}
  <a class="btn btn-primary" href="{{.C.ButtonURL}}">{{.C.ButtonLabel}}</a>
  {{- end}}
</section>{{end}}
{{define "text"}}<section class="block block-text">
  {{- if .Heading}}
  <h2>{{.Heading}}</h2>
  {{- end}}
  <p>{{.Body}}</p>
</section>{{end}}
{{define "image"}}<figure class="block block-image">
  {{- if .Src}}
  <img src="{{.Src}}" alt="{{.Alt}}">
  {{- else}}
  <div class="image-placeholder" role="img" aria-label="{{if .Alt}}{{.Alt}}{{else}}Image{{end}}"></div>
  {{- end}}
  {{- if .Caption}}
  <figcaption>{{.Caption}}</figcaption>
  {{- end}}
</figure>{{end}}
{{define "button"}}<div class="block block-button"><a class="{{.Class}}" href="{{.C.URL}}">{{.C.Label}}</a></div>{{end}}
{{define "columns"}}<section class="block block-columns">
  <div class="column"><h3>{{.LeftHeading}}</h3><p>{{.LeftBody}}</p></div>
  <div class="column"><h3>{{.RightHeading}}</h3><p>{{.RightBody}}</p></div>
</section>{{end}}
{{define "footer"}}<footer class="block block-footer">
  <strong>{{.CompanyName}}</strong>
  <p>{{.Tagline}}</p>
  <small>{{.Copyright}}</small>
</footer>{{end}}
`

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body{margin:0;font-family:system-ui,sans-serif;background:#f4f4f5}
.frame{margin:0 auto;background:#fff;{{if .Mobile}}max-width:375px{{else}}width:100%{{end}}}
.url{font:12px monospace;color:#71717a;padding:8px 16px;border-bottom:1px solid #e4e4e7}
.block{padding:32px}
.block-hero{color:#fff;text-align:center}
.block-columns{display:grid;grid-template-columns:1fr 1fr;gap:24px}
.block-button{text-align:center}
.btn{display:inline-block;padding:8px 20px;border-radius:999px;text-decoration:none;font-weight:600}
.btn-primary{background:#10b981;color:#000}
.btn-secondary{background:#1f2937;color:#fff}
.btn-outline{border:2px solid #1f2937;color:#1f2937}
.image-placeholder{height:160px;background:#e5e7eb}
.block-footer{background:#111827;color:#d1d5db}
</style>
</head>
<body>
<div class="frame">
<div class="url">{{.URL}}</div>
{{range .Blocks}}{{.}}
{{else}}<p class="empty">This page has no blocks yet.</p>
{{end}}</div>
</body>
</html>
`

var (
	blockTmpl = template.Must(template.New("blocks").Parse(blockTemplates))
	pageTmpl  = template.Must(template.New("page").Parse(pageTemplate))

	whitespaceRe = regexp.MustCompile(`\s+`)
)

type heroView struct {
	C          blocks.Hero
	Background template.CSS
}

type buttonView struct {
	C     blocks.Button
	Class string
}

// RenderBlock renders a single block. Content that does not decode falls
// back to the type's default through the codec.
func RenderBlock(b editor.Block) (template.HTML, error) {
	var (
		name string
		data any
	)
	switch c := b.Decoded().(type) {
	case blocks.Hero:
		bg := template.CSS("background:linear-gradient(135deg,#1a1a2e 0%,#16213e 50%,#0f3460 100%)")
		if c.BackgroundImage != "" {
			bg = template.CSS(fmt.Sprintf("background:linear-gradient(rgba(0,0,0,.5),rgba(0,0,0,.7)),url(%q) center/cover", c.BackgroundImage))
		}
		name, data = "hero", heroView{C: c, Background: bg}
	case blocks.Text:
		name, data = "text", c
	case blocks.Image:
		name, data = "image", c
	case blocks.Button:
		cls, ok := variantClass[c.Variant]
		if !ok {
			cls = variantClass[blocks.VariantPrimary]
		}
		name, data = "button", buttonView{C: c, Class: cls}
	case blocks.Columns:
		name, data = "columns", c
	case blocks.Footer:
		name, data = "footer", c
	default:
		return "", fmt.Errorf("render: unsupported block type %q", b.BlockType)
	}

	var buf bytes.Buffer
	if err := blockTmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render: %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // produced by html/template
}

// PreviewURL returns the display URL shown above a project preview.
func PreviewURL(projectName string) string {
	slug := whitespaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(projectName)), "-")
	return "preview.webcraft.app/" + slug
}

// RenderPreview renders a full HTML document for the blocks of a project.
func RenderPreview(projectName string, bs []editor.Block, vp Viewport) ([]byte, error) {
	rendered := make([]template.HTML, 0, len(bs))
	for _, b := range bs {
		h, err := RenderBlock(b)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, h)
	}
	var buf bytes.Buffer
	err := pageTmpl.Execute(&buf, struct {
		Title  string
		URL    string
		Mobile bool
		Blocks []template.HTML
	}{
		Title:  projectName,
		URL:    PreviewURL(projectName),
		Mobile: vp == Mobile,
		Blocks: rendered,
	})
	if err != nil {
		return nil, fmt.Errorf("render: preview: %w", err)
	}
	return buf.Bytes(), nil
}
