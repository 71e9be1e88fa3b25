package auth

import (
	"errors"
	"testing"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
)

func TestAuthorize(t *testing.T) {
	owner := &model.User{ID: 1, Role: model.RoleUser}
	stranger := &model.User{ID: 2, Role: model.RoleUser}
	admin := &model.User{ID: 3, Role: model.RoleAdmin}
	banned := &model.User{ID: 1, Role: model.RoleBan}
	app := &model.App{ID: 10, UserID: 1}

	tests := []struct {
		name    string
		caller  *model.User
		res     Resource
		action  Action
		wantErr error
	}{
		{"anonymous read", nil, app, ActionRead, nil},
		{"anonymous create", nil, nil, ActionCreate, apperror.ErrUnauthorized},
		{"anonymous delete", nil, app, ActionDelete, apperror.ErrUnauthorized},
		{"user create", stranger, nil, ActionCreate, nil},
		{"owner edit", owner, app, ActionEdit, nil},
		{"owner delete", owner, app, ActionDelete, nil},
		{"stranger edit", stranger, app, ActionEdit, apperror.ErrForbidden},
		{"stranger delete", stranger, app, ActionDelete, apperror.ErrForbidden},
		{"admin edit", admin, app, ActionEdit, nil},
		{"admin delete", admin, app, ActionDelete, nil},
		{"owner update", owner, app, ActionUpdate, apperror.ErrForbidden},
		{"admin update", admin, app, ActionUpdate, nil},
		{"user list all", stranger, nil, ActionListAll, apperror.ErrForbidden},
		{"admin list all", admin, nil, ActionListAll, nil},
		{"banned owner edit", banned, app, ActionEdit, apperror.ErrForbidden},
		{"banned create", banned, nil, ActionCreate, apperror.ErrForbidden},
		{"banned read", banned, app, ActionRead, nil},
		{"edit with nil resource", stranger, nil, ActionEdit, apperror.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.caller, tt.res, tt.action)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Authorize() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Authorize() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
