package api

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/starford/webcraft/internal/identity"
)

// LandingResponse is the public landing document. Clients use
// Authenticated to choose between "Continue building" and signing in.
type LandingResponse struct {
	Name          string   `json:"name"`
	Tagline       string   `json:"tagline"`
	Features      []string `json:"features"`
	Authenticated bool     `json:"authenticated"`
	Next          string   `json:"next"`
}

// Landing handles GET /. A valid Authorization header is honoured but not
// required.
func Landing(v *identity.Verifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed := false
		if v != nil {
			_, err := v.Verify(r.Header.Get("Authorization"))
			authed = err == nil
		}
		next := "/api/dashboard"
		if !authed {
			next = "/"
		}
		writeJSON(w, http.StatusOK, LandingResponse{
			Name:    "WebCraft",
			Tagline: "Build websites by chatting with AI",
			Features: []string{
				"Describe a site and start building from a prompt",
				"Start from a template gallery",
				"Edit pages block by block with a live preview",
				"Publish with one click",
			},
			Authenticated: authed,
			Next:          next,
		})
	}
}

type cookieType struct {
	Name        string
	Required    bool
	Description string
	Examples    []string
}

var cookiePolicy = template.Must(template.New("cookies").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Cookie Policy - WebCraft</title>
</head>
<body>
<main>
<h1>Cookie Policy</h1>
<p>Last updated: {{.Updated}}</p>
<section>
<h2>What Are Cookies?</h2>
<p>Cookies are small text files stored in your browser when you visit a website. They let the site remember your actions and preferences over time.</p>
</section>
<section>
<h2>How We Use Cookies</h2>
<p>We use cookies to keep you signed in, remember your preferences and understand how the platform is used so we can improve it.</p>
</section>
<section>
<h2>Types of Cookies We Use</h2>
{{range .Types}}<article>
<h3>{{.Name}}{{if .Required}} (required){{end}}</h3>
<p>{{.Description}}</p>
<ul>{{range .Examples}}<li><code>{{.}}</code></li>{{end}}</ul>
</article>
{{end}}</section>
<section>
<h2>Third-Party Cookies</h2>
<p>Some cookies are set by services we rely on, such as analytics providers. Their use is governed by those providers' own policies.</p>
</section>
<section>
<h2>Managing Your Cookies</h2>
<p>You can block or delete cookies in your browser settings. Blocking essential cookies will stop parts of the platform from working.</p>
</section>
<section>
<h2>Changes to This Policy</h2>
<p>We may update this policy from time to time. The date at the top of the page shows when it last changed.</p>
</section>
<section>
<h2>Contact Us</h2>
<p>Questions about this policy can be sent to privacy@webcraft.app.</p>
</section>
</main>
</body>
</html>
`))

var cookieTypes = []cookieType{
	{
		Name:        "Essential Cookies",
		Required:    true,
		Description: "Strictly necessary for the platform to function: authentication, session management and security. You cannot opt out of these.",
		Examples:    []string{"session_id", "auth_token", "csrf_token"},
	},
	{
		Name:        "Analytics Cookies",
		Description: "Help us understand which pages are popular and how visitors move through the platform.",
		Examples:    []string{"_ga", "_gid", "plausible_session"},
	},
	{
		Name:        "Preference Cookies",
		Description: "Remember your settings such as theme, sidebar state and notification preferences.",
		Examples:    []string{"theme", "sidebar_collapsed", "editor_layout"},
	},
	{
		Name:        "Marketing Cookies",
		Description: "Track visits across websites so that relevant ads can be shown. They may be set by advertising partners.",
		Examples:    []string{"_fbp", "tt_sessionid", "_gcl_au"},
	},
}

// CookiePolicy handles GET /cookies.
func CookiePolicy(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := cookiePolicy.Execute(&buf, struct {
		Updated string
		Types   []cookieType
	}{Updated: "February 27, 2026", Types: cookieTypes})
	if err != nil {
		slog.ErrorContext(r.Context(), "render cookie policy failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
