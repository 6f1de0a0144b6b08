// Package auth holds password hashing, session tokens and the role matrix.
package auth

import (
	"slices"
	"strings"

	"immodash/internal/domain"
)

const (
	ActionCall     = "call"
	ActionWhatsApp = "whatsapp"
	ActionPipeline = "pipeline"
)

// Permissions lists what a role may open and do.
type Permissions struct {
	Pages        []string `json:"pages"`
	Actions      []string `json:"actions"`
	SettingsTabs []string `json:"settingsTabs"`
}

var matrix = map[domain.Role]Permissions{
	domain.RoleAdmin: {
		Pages:        []string{"/", "/properties", "/gallery", "/clients", "/analytics", "/settings"},
		Actions:      []string{ActionCall, ActionWhatsApp, ActionPipeline},
		SettingsTabs: []string{"profile", "security", "notifications", "integration", "users"},
	},
	domain.RoleAgent: {
		Pages:        []string{"/", "/properties", "/gallery", "/clients", "/settings"},
		Actions:      []string{ActionCall, ActionWhatsApp, ActionPipeline},
		SettingsTabs: []string{"profile", "security", "notifications"},
	},
	domain.RoleViewer: {
		Pages:        []string{"/properties", "/gallery", "/settings"},
		Actions:      []string{},
		SettingsTabs: []string{"profile", "security", "notifications"},
	},
}

// PermissionsFor returns the matrix row of role; unknown roles get viewer rights.
func PermissionsFor(role domain.Role) Permissions {
	if p, ok := matrix[role]; ok {
		return p
	}
	return matrix[domain.RoleViewer]
}

func HasPermission(role domain.Role, action string) bool {
	return slices.Contains(PermissionsFor(role).Actions, action)
}

func CanAccessPage(role domain.Role, path string) bool {
	return slices.Contains(PermissionsFor(role).Pages, path)
}

func CanAccessSettingsTab(role domain.Role, tab string) bool {
	return slices.Contains(PermissionsFor(role).SettingsTabs, tab)
}

// defaultRoles covers accounts whose stored role is empty.
var defaultRoles = map[string]domain.Role{
	"admin@immodash.ci": domain.RoleAdmin,
	"agent@immodash.ci": domain.RoleAgent,
	"demo@immodash.ci":  domain.RoleViewer,
}

// ResolveRole keeps a valid stored role, else falls back to the email mapping, else viewer.
func ResolveRole(email string, stored domain.Role) domain.Role {
	if _, ok := matrix[stored]; ok {
		return stored
	}
	if r, ok := defaultRoles[strings.ToLower(strings.TrimSpace(email))]; ok {
		return r
	}
	return domain.RoleViewer
}

// DisplayName defaults to the local part of the email.
func DisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "Utilisateur"
}

// Avatar is the upper-cased first letter of the display name.
func Avatar(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "U"
}
