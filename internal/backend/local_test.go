package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/testutil"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	return NewLocal(testutil.TestDB(t))
}

func TestCreateProjectStartsAsDraft(t *testing.T) {
	b := newTestLocal(t)
	ctx := testutil.As("alice")

	id, err := b.CreateProject(ctx, "Build a blog", "", "Build a blog")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	p, err := b.GetProject(ctx, id)
	if err != nil || p == nil {
		t.Fatalf("GetProject = %v, %v", p, err)
	}
	if p.Status != models.StatusDraft {
		t.Errorf("status = %q, want draft", p.Status)
	}
	if p.PreviewURL != "preview.webcraft.app/build-a-blog" {
		t.Errorf("previewUrl = %q", p.PreviewURL)
	}

	if err := b.UpdateProjectStatus(ctx, id, models.StatusBuilding); err != nil {
		t.Fatalf("UpdateProjectStatus: %v", err)
	}
	p, _ = b.GetProject(ctx, id)
	if p.Status != models.StatusBuilding {
		t.Errorf("status = %q, want building", p.Status)
	}
}

func TestAnonymousCallerRejected(t *testing.T) {
	b := newTestLocal(t)
	if _, err := b.CreateProject(context.Background(), "x", "", ""); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("CreateProject: %v", err)
	}
	if _, err := b.GetUserProjects(context.Background()); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Errorf("GetUserProjects: %v", err)
	}
}

func TestProjectsAreOwnerScoped(t *testing.T) {
	b := newTestLocal(t)
	alice, bob := testutil.As("alice"), testutil.As("bob")

	id, _ := b.CreateProject(alice, "Shop", "", "")

	p, err := b.GetProject(bob, id)
	if err != nil || p != nil {
		t.Errorf("bob sees alice's project: %v, %v", p, err)
	}
	if err := b.DeleteProject(bob, id); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("bob deleted alice's project: %v", err)
	}
	if _, err := b.SendMessage(bob, id, models.RoleUser, "hi"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("bob wrote to alice's chat: %v", err)
	}
	list, _ := b.GetUserProjects(bob)
	if len(list) != 0 {
		t.Errorf("bob's list = %+v", list)
	}
}

func TestGetProjectAbsentIsNil(t *testing.T) {
	b := newTestLocal(t)
	p, err := b.GetProject(testutil.As("alice"), "missing")
	if err != nil || p != nil {
		t.Errorf("GetProject = %v, %v", p, err)
	}
}

func TestUpdateProjectValidation(t *testing.T) {
	b := newTestLocal(t)
	ctx := testutil.As("alice")
	id, _ := b.CreateProject(ctx, "Site", "", "")

	if err := b.UpdateProject(ctx, id, "  ", "d", "p"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank name accepted: %v", err)
	}
	if err := b.UpdateProjectStatus(ctx, id, "archived"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown status accepted: %v", err)
	}
	if err := b.UpdateProject(ctx, id, "New Name", "d", "p"); err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	p, _ := b.GetProject(ctx, id)
	if p.Name != "New Name" || p.PreviewURL != "preview.webcraft.app/new-name" {
		t.Errorf("project = %+v", p)
	}
}

func TestChatHistory(t *testing.T) {
	b := newTestLocal(t)
	ctx := testutil.As("alice")
	id, _ := b.CreateProject(ctx, "Chat", "", "")

	hist, err := b.GetChatHistory(ctx, id)
	if err != nil || hist == nil || len(hist) != 0 {
		t.Fatalf("empty history = %v, %v", hist, err)
	}

	if _, err := b.SendMessage(ctx, id, models.RoleUser, "hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.SendMessage(ctx, id, models.RoleAssistant, "hi there"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.SendMessage(ctx, id, "system", "x"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown role accepted: %v", err)
	}
	hist, _ = b.GetChatHistory(ctx, id)
	if len(hist) != 2 || hist[0].Role != models.RoleUser || hist[1].Content != "hi there" {
		t.Errorf("history = %+v", hist)
	}
}

func TestSettingsDefaults(t *testing.T) {
	b := newTestLocal(t)
	ctx := testutil.As("alice")

	s, err := b.GetUserSettings(ctx)
	if err != nil || s != nil {
		t.Fatalf("unset settings = %v, %v", s, err)
	}
	if err := b.SaveUserSettings(ctx, models.UserSettings{NotificationsEnabled: true}); err != nil {
		t.Fatalf("SaveUserSettings: %v", err)
	}
	s, _ = b.GetUserSettings(ctx)
	if s.Theme != models.DefaultTheme || s.Plan != models.DefaultPlan || !s.NotificationsEnabled {
		t.Errorf("settings = %+v", s)
	}
	if err := b.SaveUserSettings(ctx, models.UserSettings{Theme: "neon"}); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown theme accepted: %v", err)
	}
}

func TestProfile(t *testing.T) {
	b := newTestLocal(t)
	ctx := testutil.As("alice")

	p, err := b.GetCallerUserProfile(ctx)
	if err != nil || p != nil {
		t.Fatalf("unset profile = %v, %v", p, err)
	}
	if err := b.CreateOrUpdateProfile(ctx, "", ""); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("blank display name accepted: %v", err)
	}
	if err := b.CreateOrUpdateProfile(ctx, "Alice", "not a url"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("bad avatar url accepted: %v", err)
	}
	if err := b.CreateOrUpdateProfile(ctx, "Alice", "https://example.com/a.png"); err != nil {
		t.Fatalf("CreateOrUpdateProfile: %v", err)
	}
	p, _ = b.GetCallerUserProfile(ctx)
	if p.DisplayName != "Alice" || p.AvatarURL != "https://example.com/a.png" {
		t.Errorf("profile = %+v", p)
	}
}

func TestRoles(t *testing.T) {
	b := newTestLocal(t)
	alice, bob := testutil.As("alice"), testutil.As("bob")

	role, err := b.GetCallerUserRole(alice)
	if err != nil || role != models.UserRoleUser {
		t.Fatalf("default role = %q, %v", role, err)
	}

	// First assignment bootstraps an admin.
	if err := b.AssignCallerUserRole(alice, "alice", models.UserRoleAdmin); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if ok, _ := b.IsCallerAdmin(alice); !ok {
		t.Error("alice should be admin")
	}
	if err := b.AssignCallerUserRole(bob, "bob", models.UserRoleAdmin); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("non-admin assigned a role: %v", err)
	}
	if err := b.AssignCallerUserRole(alice, "bob", models.UserRoleGuest); err != nil {
		t.Fatalf("admin assign: %v", err)
	}
	if role, _ := b.GetCallerUserRole(bob); role != models.UserRoleGuest {
		t.Errorf("bob role = %q", role)
	}
	if err := b.AssignCallerUserRole(alice, "bob", "owner"); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("unknown role accepted: %v", err)
	}
}
