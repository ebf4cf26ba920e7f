package studio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/assistant"
	"github.com/starford/webcraft/internal/backend"
	"github.com/starford/webcraft/internal/blocks"
	"github.com/starford/webcraft/internal/cache"
	"github.com/starford/webcraft/internal/catalog"
	"github.com/starford/webcraft/internal/chat"
	"github.com/starford/webcraft/internal/dataaccess"
	"github.com/starford/webcraft/internal/editor"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/sse"
	"github.com/starford/webcraft/internal/store"
	"github.com/starford/webcraft/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recorder) Publish(e sse.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) PublishProjectEvent(owner, kind, projectID string) {
	r.Publish(sse.Event{Owner: owner, Type: kind, Data: projectID})
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

type fixture struct {
	svc    *Service
	db     *store.DB
	events *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slog.New(slog.NewJSONHandler(io.Discard, nil))
	db := testutil.TestDB(t)
	client := dataaccess.New(backend.NewLocal(db), cache.NewMemory(), time.Minute, log)
	replies := map[assistant.Surface]chat.Replier{
		assistant.SurfaceChat:   assistant.New([]string{"chat answer"}, 50*time.Millisecond, 50*time.Millisecond),
		assistant.SurfaceEditor: assistant.New([]string{"editor answer"}, 50*time.Millisecond, 50*time.Millisecond),
	}
	chats := chat.NewManager(client, replies, log, nil)
	t.Cleanup(chats.Close)

	fallback, err := catalog.Templates(catalog.Builtin())
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	svc := New(client, db, db, chats, cache.NewMemory(), rec, Options{Fallback: fallback, Logger: log})
	return &fixture{svc: svc, db: db, events: rec}
}

func TestCreateFromPrompt(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	long := strings.Repeat("a", 45)
	p, err := f.svc.CreateFromPrompt(ctx, "", long)
	if err != nil {
		t.Fatalf("CreateFromPrompt: %v", err)
	}
	if p.Name != strings.Repeat("a", 40)+"..." {
		t.Errorf("name = %q", p.Name)
	}
	if p.Status != models.StatusBuilding {
		t.Errorf("status = %q, want building", p.Status)
	}

	named, err := f.svc.CreateFromPrompt(ctx, "  Shop  ", "  sell things  ")
	if err != nil {
		t.Fatal(err)
	}
	if named.Name != "Shop" || named.Prompt != "sell things" || named.Description != "  sell things  " {
		t.Errorf("project = %+v", named)
	}

	if _, err := f.svc.CreateFromPrompt(ctx, "x", "   "); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank prompt: %v", err)
	}

	types := f.events.types()
	if len(types) != 2 || types[0] != sse.ProjectCreated {
		t.Errorf("events = %v", types)
	}
}

func TestPromptProjectName(t *testing.T) {
	cases := []struct{ name, prompt, want string }{
		{"", "short", "short"},
		{"", strings.Repeat("é", 41), strings.Repeat("é", 40) + "..."},
		{"", strings.Repeat("x", 40), strings.Repeat("x", 40)},
		{"Named", "anything", "Named"},
		{"", "", "My Project"},
	}
	for _, c := range cases {
		if got := promptProjectName(c.name, c.prompt); got != c.want {
			t.Errorf("promptProjectName(%q, %q) = %q, want %q", c.name, c.prompt, got, c.want)
		}
	}
}

func TestCreateFromTemplateUsesFallback(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	p, err := f.svc.CreateFromTemplate(ctx, "t1")
	if err != nil {
		t.Fatalf("CreateFromTemplate: %v", err)
	}
	if p.Name != "SaaS Landing Page" {
		t.Errorf("name = %q", p.Name)
	}
	if !strings.HasPrefix(p.Prompt, `Create a Landing Page named "SaaS Landing Page": `) {
		t.Errorf("prompt = %q", p.Prompt)
	}
	if _, err := f.svc.CreateFromTemplate(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown template: %v", err)
	}
}

func TestCreateChatProject(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC) }

	p, err := f.svc.CreateChatProject(testutil.As("alice"))
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Chat Project 3/7/2025" || p.Status != models.StatusBuilding {
		t.Errorf("project = %+v", p)
	}
}

func TestListProjectsFilters(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	shop, _ := f.svc.CreateFromPrompt(ctx, "Shop", "a shop")
	blog, _ := f.svc.CreateFromPrompt(ctx, "Blog", "a blog")
	if _, err := f.svc.CreateBlank(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.TogglePublish(ctx, shop.ID); err != nil {
		t.Fatal(err)
	}

	live, _ := f.svc.ListProjects(ctx, FilterLive, "")
	if len(live) != 1 || live[0].ID != shop.ID {
		t.Errorf("live = %+v", live)
	}
	draft, _ := f.svc.ListProjects(ctx, FilterDraft, "")
	if len(draft) != 2 {
		t.Errorf("draft = %d, want 2 (building counts as draft)", len(draft))
	}
	found, _ := f.svc.ListProjects(ctx, FilterAll, "BLO")
	if len(found) != 1 || found[0].ID != blog.ID {
		t.Errorf("search = %+v", found)
	}
	if _, err := ParseProjectFilter("archived"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("ParseProjectFilter: %v", err)
	}
}

func TestSortRecent(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ps := []models.Project{
		{ID: "old", UpdatedAt: base},
		{ID: "new", UpdatedAt: base.Add(2 * time.Hour)},
		{ID: "mid", UpdatedAt: base.Add(time.Hour)},
	}
	sortRecent(ps)
	if ps[0].ID != "new" || ps[1].ID != "mid" || ps[2].ID != "old" {
		t.Errorf("order = %s %s %s", ps[0].ID, ps[1].ID, ps[2].ID)
	}
}

func TestTogglePublish(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateFromPrompt(ctx, "", "site")

	p, err := f.svc.TogglePublish(ctx, p.ID)
	if err != nil || p.Status != models.StatusLive {
		t.Fatalf("first toggle = %v, %v", p, err)
	}
	p, err = f.svc.TogglePublish(ctx, p.ID)
	if err != nil || p.Status != models.StatusDraft {
		t.Fatalf("second toggle = %v, %v", p, err)
	}
	if _, err := f.svc.TogglePublish(testutil.As("bob"), p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other owner: %v", err)
	}
}

func TestDeleteProject(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateFromPrompt(ctx, "", "site")
	if _, err := f.svc.Transcript(ctx, p.ID); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject: %v", err)
	}
	if _, err := f.svc.GetProject(ctx, p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetProject after delete: %v", err)
	}
	types := f.events.types()
	if types[len(types)-1] != sse.ProjectDeleted {
		t.Errorf("last event = %s", types[len(types)-1])
	}
}

func TestListTemplates(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	all, err := f.svc.ListTemplates(ctx, AllCategories, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 12 {
		t.Fatalf("fallback templates = %d, want 12", len(all))
	}

	landing, _ := f.svc.ListTemplates(ctx, "Landing Page", "")
	for _, tpl := range landing {
		if tpl.Category != "Landing Page" {
			t.Errorf("category filter leaked %+v", tpl)
		}
	}
	if len(landing) == 0 {
		t.Error("no landing pages")
	}

	byCategory, _ := f.svc.ListTemplates(ctx, "", "saas")
	for _, tpl := range byCategory {
		if !strings.Contains(strings.ToLower(tpl.Name), "saas") && tpl.Category != "SaaS" {
			t.Errorf("search leaked %+v", tpl)
		}
	}
}

func TestListTemplatesPrefersBackend(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	row := store.TemplateRow{
		Template: models.Template{ID: "custom", Name: "Custom", Category: "Blog"},
		Source:   catalog.SourceDirectory,
	}
	if err := f.db.UpsertTemplate(ctx, row); err != nil {
		t.Fatal(err)
	}
	list, err := f.svc.ListTemplates(ctx, AllCategories, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != "custom" || list[0].Tags == nil {
		t.Errorf("list = %+v", list)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	d, err := f.svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if d.Greeting != "there" || d.Total != 0 || len(d.Recent) != 0 {
		t.Errorf("empty dashboard = %+v", d)
	}

	if _, err := f.svc.SaveProfile(ctx, "Alice Liddell", ""); err != nil {
		t.Fatal(err)
	}
	p, _ := f.svc.CreateFromPrompt(ctx, "", "site")
	f.svc.TogglePublish(ctx, p.ID)
	f.svc.CreateBlank(ctx)

	d, _ = f.svc.Dashboard(ctx)
	if d.Greeting != "Alice" {
		t.Errorf("greeting = %q", d.Greeting)
	}
	if d.Total != 2 || d.Counts[models.StatusLive] != 1 || d.Counts[models.StatusDraft] != 1 || d.Counts[models.StatusBuilding] != 0 {
		t.Errorf("counts = %d %v", d.Total, d.Counts)
	}
}

func TestPageOperations(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateFromPrompt(ctx, "", "site")

	page, err := f.svc.LoadPage(ctx, p.ID)
	if err != nil || len(page.Blocks) != 0 || page.ETag == "" {
		t.Fatalf("LoadPage = %+v, %v", page, err)
	}

	page, hero, err := f.svc.AddBlock(ctx, p.ID, "hero", page.ETag)
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}
	page, text, _ := f.svc.AddBlock(ctx, p.ID, "text", page.ETag)
	if len(page.Blocks) != 2 || page.Blocks[0].ID != hero.ID {
		t.Fatalf("blocks = %+v", page.Blocks)
	}

	page, err = f.svc.MoveBlock(ctx, p.ID, text.ID, Up, "")
	if err != nil || page.Blocks[0].ID != text.ID {
		t.Fatalf("MoveBlock = %+v, %v", page, err)
	}
	page, err = f.svc.MoveBlock(ctx, p.ID, text.ID, Up, "")
	if err != nil || page.Blocks[0].ID != text.ID {
		t.Errorf("move past top should be a no-op: %+v, %v", page, err)
	}

	page, err = f.svc.ReorderBlock(ctx, p.ID, text.ID, hero.ID, editor.After, "")
	if err != nil || page.Blocks[1].ID != text.ID {
		t.Fatalf("ReorderBlock = %+v, %v", page, err)
	}

	page, err = f.svc.UpdateBlock(ctx, p.ID, hero.ID, `{"headline":"Hi"}`, "")
	if err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}
	got, ok := page.Blocks[0].Decoded().(blocks.Hero)
	if !ok || got.Headline != "Hi" {
		t.Errorf("hero = %#v", page.Blocks[0].Decoded())
	}

	page, err = f.svc.RemoveBlock(ctx, p.ID, text.ID, "")
	if err != nil || len(page.Blocks) != 1 {
		t.Fatalf("RemoveBlock = %+v, %v", page, err)
	}
	if _, err := f.svc.RemoveBlock(ctx, p.ID, text.ID, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second remove: %v", err)
	}

	reloaded, _ := f.svc.LoadPage(ctx, p.ID)
	if reloaded.ETag != page.ETag {
		t.Error("stored page differs from returned page")
	}
}

func TestPageConflictAndValidation(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateFromPrompt(ctx, "", "site")

	if _, _, err := f.svc.AddBlock(ctx, p.ID, "hero", "stale"); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("stale etag: %v", err)
	}
	if _, _, err := f.svc.AddBlock(ctx, p.ID, "video", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown type: %v", err)
	}
	if _, err := f.svc.MoveBlock(ctx, p.ID, "x", "sideways", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad direction: %v", err)
	}

	dup := []editor.Block{
		{ID: "a", BlockType: blocks.TypeText, Content: "{}"},
		{ID: "a", BlockType: blocks.TypeText, Content: "{}"},
	}
	if _, err := f.svc.SavePage(ctx, p.ID, dup, ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("duplicate ids: %v", err)
	}
	bad := []editor.Block{{ID: "a", BlockType: "video"}}
	if _, err := f.svc.SavePage(ctx, p.ID, bad, ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad type: %v", err)
	}

	good := []editor.Block{{ID: "a", BlockType: blocks.TypeFooter, Content: blocks.DefaultSerialized(blocks.TypeFooter)}}
	page, err := f.svc.SavePage(ctx, p.ID, good, "")
	if err != nil || len(page.Blocks) != 1 {
		t.Fatalf("SavePage = %+v, %v", page, err)
	}
	if _, err := f.svc.LoadPage(testutil.As("bob"), p.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other owner: %v", err)
	}

	found := false
	for _, typ := range f.events.types() {
		if typ == sse.BlocksUpdated {
			found = true
		}
	}
	if !found {
		t.Error("no blocks.updated event")
	}
}

func TestUpdateBlockRejectsNonObjectContent(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateFromPrompt(ctx, "", "site")
	_, hero, err := f.svc.AddBlock(ctx, p.ID, "hero", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.UpdateBlock(ctx, p.ID, hero.ID, `{"headline":"Launch Day"}`, ""); err != nil {
		t.Fatalf("UpdateBlock: %v", err)
	}

	for _, raw := range []string{"not json", "", "42", "null", `"text"`, "[1]"} {
		if _, err := f.svc.UpdateBlock(ctx, p.ID, hero.ID, raw, ""); !errors.Is(err, apperr.ErrInvalidInput) {
			t.Errorf("UpdateBlock(%q) = %v, want invalid input", raw, err)
		}
	}

	page, err := f.svc.LoadPage(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	got, ok := page.Blocks[0].Decoded().(blocks.Hero)
	if !ok || got.Headline != "Launch Day" {
		t.Errorf("hero after rejected edits = %+v", page.Blocks[0].Decoded())
	}
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateFromPrompt(ctx, "My Site", "site")
	f.svc.AddBlock(ctx, p.ID, "hero", "")

	html, err := f.svc.Preview(ctx, p.ID, "mobile")
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	if !strings.Contains(string(html), "preview.webcraft.app/my-site") {
		t.Error("preview URL missing")
	}
}

func TestSendChat(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")
	p, _ := f.svc.CreateChatProject(ctx)

	tr, err := f.svc.SendChat(ctx, p.ID, assistant.SurfaceEditor, "  make it blue ")
	if err != nil {
		t.Fatalf("SendChat: %v", err)
	}
	if len(tr.Messages) != 1 || tr.Messages[0].Content != "make it blue" || !tr.Typing {
		t.Fatalf("transcript = %+v", tr)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		tr, _ = f.svc.Transcript(ctx, p.ID)
		if len(tr.Messages) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(tr.Messages) != 2 || tr.Messages[1].Content != "editor answer" || tr.Typing {
		t.Fatalf("after reply = %+v", tr)
	}

	if _, err := ParseSurface("sidebar"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("ParseSurface: %v", err)
	}
	if _, err := f.svc.SendChat(testutil.As("bob"), p.ID, assistant.SurfaceChat, "hi"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other owner: %v", err)
	}
}

func TestSettingsAndRole(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	st, err := f.svc.Settings(ctx)
	if err != nil || st != DefaultSettings() {
		t.Fatalf("Settings = %+v, %v", st, err)
	}
	st, err = f.svc.SaveSettings(ctx, models.UserSettings{Theme: "dark"})
	if err != nil || st.Theme != "dark" || st.Plan != models.DefaultPlan {
		t.Fatalf("SaveSettings = %+v, %v", st, err)
	}
	if _, err := f.svc.SaveSettings(ctx, models.UserSettings{Theme: "neon"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad theme: %v", err)
	}

	r, _ := f.svc.Role(ctx)
	if r.Role != models.UserRoleUser || r.IsAdmin {
		t.Errorf("default role = %+v", r)
	}
	if err := f.svc.AssignRole(ctx, "", models.UserRoleAdmin); err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	r, _ = f.svc.Role(ctx)
	if !r.IsAdmin {
		t.Errorf("role = %+v", r)
	}
	if err := f.svc.AssignRole(testutil.As("bob"), "", models.UserRoleAdmin); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("second admin by non-admin: %v", err)
	}
}

func TestPrefs(t *testing.T) {
	f := newFixture(t)
	ctx := testutil.As("alice")

	p, err := f.svc.Prefs(ctx, "")
	if err != nil || p != DefaultPrefs() {
		t.Fatalf("Prefs = %+v, %v", p, err)
	}

	list, collapsed := "list", true
	p, err = f.svc.UpdatePrefs(ctx, "tab-1", PrefsPatch{ProjectsView: &list, SidebarCollapsed: &collapsed})
	if err != nil {
		t.Fatalf("UpdatePrefs: %v", err)
	}
	if p.ProjectsView != "list" || !p.SidebarCollapsed || p.EditorTab != "preview" {
		t.Errorf("prefs = %+v", p)
	}

	other, _ := f.svc.Prefs(ctx, "tab-2")
	if other != DefaultPrefs() {
		t.Errorf("sessions share prefs: %+v", other)
	}
	again, _ := f.svc.Prefs(ctx, "tab-1")
	if again != p {
		t.Errorf("reload = %+v, want %+v", again, p)
	}

	tiles := "tiles"
	if _, err := f.svc.UpdatePrefs(ctx, "tab-1", PrefsPatch{ProjectsView: &tiles}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad view: %v", err)
	}
	if _, err := f.svc.Prefs(context.Background(), ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("anonymous: %v", err)
	}
}
