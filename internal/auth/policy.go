package auth

import (
	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
)

// Action is an operation a caller attempts on a resource.
type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionEdit    Action = "edit"
	ActionDelete  Action = "delete"
	ActionUpdate  Action = "update"
	ActionListAll Action = "list_all"
)

// Resource is anything with an owning user.
type Resource interface {
	OwnerID() int64
}

// Authorize decides whether caller may perform action on res. res may be
// nil for actions that are not tied to one record (create, list_all).
//
// Reads are public. Everything else needs a logged-in, non-banned caller.
// Edit and delete are for the owner or an admin; update and list_all are
// admin-only.
func Authorize(caller *model.User, res Resource, action Action) error {
	if action == ActionRead {
		return nil
	}
	if caller == nil {
		return apperror.Unauthorized("not logged in")
	}
	if caller.IsBanned() {
		return apperror.Forbidden("account is banned")
	}

	switch action {
	case ActionCreate:
		return nil
	case ActionEdit, ActionDelete:
		if caller.IsAdmin() {
			return nil
		}
		if res != nil && res.OwnerID() == caller.ID {
			return nil
		}
		return apperror.Forbidden("no permission")
	case ActionUpdate, ActionListAll:
		if caller.IsAdmin() {
			return nil
		}
		return apperror.Forbidden("no permission")
	default:
		return apperror.Forbidden("unknown action")
	}
}
