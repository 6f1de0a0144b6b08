package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"immodash/internal/auth"
	"immodash/internal/domain"
)

func TestPermissions(t *testing.T) {
	if !auth.HasPermission(domain.RoleAgent, auth.ActionPipeline) || auth.HasPermission(domain.RoleViewer, auth.ActionPipeline) {
		t.Fatalf("pipeline permission: agent yes, viewer no")
	}
	if auth.CanAccessPage(domain.RoleAgent, "/analytics") || !auth.CanAccessPage(domain.RoleAdmin, "/analytics") {
		t.Fatalf("analytics is admin only")
	}
	if !auth.CanAccessSettingsTab(domain.RoleAdmin, "users") || auth.CanAccessSettingsTab(domain.RoleAgent, "users") {
		t.Fatalf("users tab is admin only")
	}
	if got := auth.PermissionsFor("superuser"); len(got.Actions) != 0 || len(got.Pages) != 3 {
		t.Fatalf("unknown roles must get viewer rights: %+v", got)
	}
}

func TestResolveRole(t *testing.T) {
	cases := []struct {
		email  string
		stored domain.Role
		want   domain.Role
	}{
		{"x@y.ci", domain.RoleAgent, domain.RoleAgent},
		{" Admin@Immodash.ci ", "", domain.RoleAdmin},
		{"someone@else.ci", "", domain.RoleViewer},
		{"agent@immodash.ci", "root", domain.RoleAgent},
	}
	for _, tc := range cases {
		if got := auth.ResolveRole(tc.email, tc.stored); got != tc.want {
			t.Errorf("ResolveRole(%q, %q) = %s, want %s", tc.email, tc.stored, got, tc.want)
		}
	}
}

func TestDisplayNameAndAvatar(t *testing.T) {
	if got := auth.DisplayName("", "awa.kone@immodash.ci"); got != "awa.kone" {
		t.Fatalf("name: %q", got)
	}
	if got := auth.Avatar("élodie"); got != "É" {
		t.Fatalf("avatar: %q", got)
	}
	if got := auth.Avatar(""); got != "U" {
		t.Fatalf("empty avatar: %q", got)
	}
}

func TestPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!")
	if err != nil {
		t.Fatal(err)
	}
	if err := auth.CheckPassword(hash, "s3cret!"); err != nil {
		t.Fatalf("good password: %v", err)
	}
	if err := auth.CheckPassword(hash, "wrong"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("bad password: %v", err)
	}
}

func TestTokens(t *testing.T) {
	if _, err := auth.NewTokenService("", time.Hour); err == nil {
		t.Fatalf("empty secret must be rejected")
	}
	now := time.Date(2026, 9, 15, 8, 0, 0, 0, time.UTC)
	ts, err := auth.NewTokenService("test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	ts = ts.WithClock(func() time.Time { return now })

	tok, exp, err := ts.Issue(domain.User{ID: "7", Email: "agent@immodash.ci", Name: "Agent", Role: domain.RoleAgent})
	if err != nil {
		t.Fatal(err)
	}
	if !exp.Equal(now.Add(time.Hour)) || strings.Count(tok, ".") != 2 {
		t.Fatalf("token %q exp %s", tok, exp)
	}

	claims, err := ts.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "7" || claims.Role != domain.RoleAgent || claims.ID == "" {
		t.Fatalf("claims: %+v", claims)
	}

	later := ts.WithClock(func() time.Time { return now.Add(2 * time.Hour) })
	if _, err := later.Parse(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expired token: %v", err)
	}

	other, _ := auth.NewTokenService("other-secret", time.Hour)
	if _, err := other.WithClock(func() time.Time { return now }).Parse(tok); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("foreign signature: %v", err)
	}
	if _, err := ts.Parse("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("garbage: %v", err)
	}
}
