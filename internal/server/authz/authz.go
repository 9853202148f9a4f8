// Package authz is the authorization guard: a single table mapping
// (role, action) to allow/deny, plus the ownership predicate for viewing
// a store's ratings.
package authz

import "github.com/storerate/storerate/internal/server/models"

// Action is a permission-checked operation class.
type Action string

const (
	// ActionManageStores covers store create/update/delete.
	ActionManageStores Action = "stores:manage"
	// ActionReadStores covers store list/get; it is also open to
	// anonymous callers, which the gateway handles by not requiring a
	// caller at all.
	ActionReadStores Action = "stores:read"
	// ActionSubmitRating covers rating submission for the caller's own
	// identity.
	ActionSubmitRating Action = "ratings:submit"
	// ActionViewStoreRatings covers the per-store ratings listing; for
	// owners it is further restricted by CanViewStoreRatings.
	ActionViewStoreRatings Action = "ratings:view"
	// ActionManageUsers covers user list/create/delete.
	ActionManageUsers Action = "users:manage"
	// ActionUpdateOwnPassword covers the password change for the
	// caller's own account.
	ActionUpdateOwnPassword Action = "password:update"
)

// Caller is the authenticated identity supplied by the gateway.
type Caller struct {
	ID   string
	Role models.Role
}

var permissions = map[Action]map[models.Role]bool{
	ActionManageStores: {
		models.RoleAdmin: true,
	},
	ActionReadStores: {
		models.RoleAdmin: true,
		models.RoleOwner: true,
		models.RoleUser:  true,
	},
	ActionSubmitRating: {
		models.RoleUser: true,
	},
	ActionViewStoreRatings: {
		models.RoleAdmin: true,
		models.RoleOwner: true,
	},
	ActionManageUsers: {
		models.RoleAdmin: true,
	},
	ActionUpdateOwnPassword: {
		models.RoleAdmin: true,
		models.RoleOwner: true,
		models.RoleUser:  true,
	},
}

// Allowed reports whether the caller's role permits the action. Ownership
// constraints are checked separately.
func Allowed(c Caller, action Action) bool {
	return permissions[action][c.Role]
}

// CanViewStoreRatings applies the ownership rule on top of the role table:
// admins may view ratings for any store, owners only for stores they own.
func CanViewStoreRatings(c Caller, store *models.Store) bool {
	if !Allowed(c, ActionViewStoreRatings) {
		return false
	}
	if c.Role == models.RoleAdmin {
		return true
	}
	return store != nil && store.OwnerID == c.ID
}
