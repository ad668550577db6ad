// Package permission implements the relation-based permission engine gating
// client-application management: capability tokens attached to roles held by
// principals, checked with a single join.
package permission

import (
	"fmt"
	"strings"
)

// Entity names a resource class a permission can attach to.
type Entity string

const (
	EntityApp          Entity = "app"
	EntityClientSecret Entity = "oauth_app_client_secret"
)

// Action names what the permission allows on the entity.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionAll    Action = "all"
)

// Identifier is the "entity:action" capability class string.
type Identifier string

// Make builds an identifier from its parts.
func Make(e Entity, a Action) Identifier {
	return Identifier(string(e) + ":" + string(a))
}

// The grants used by the registry.
var (
	AppAll       = Make(EntityApp, ActionAll)
	AppUpdate    = Make(EntityApp, ActionUpdate)
	SecretAll    = Make(EntityClientSecret, ActionAll)
	SecretDelete = Make(EntityClientSecret, ActionDelete)
)

func (i Identifier) String() string { return string(i) }

// Parse validates the "entity:action" shape and known entity/action values.
func Parse(s string) (Identifier, error) {
	entity, action, ok := strings.Cut(s, ":")
	if !ok || entity == "" || action == "" {
		return "", fmt.Errorf("invalid permission identifier %q", s)
	}
	switch Entity(entity) {
	case EntityApp, EntityClientSecret:
	default:
		return "", fmt.Errorf("unknown permission entity %q", entity)
	}
	switch Action(action) {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionAll:
	default:
		return "", fmt.Errorf("unknown permission action %q", action)
	}
	return Identifier(s), nil
}

func identifierStrings(ids []Identifier) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
