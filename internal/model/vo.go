package model

import "time"

// UserVO is the public projection of a user.
type UserVO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"userName"`
	AvatarURL string    `json:"userAvatar"`
	Profile   string    `json:"userProfile"`
	Role      string    `json:"userRole"`
	CreatedAt time.Time `json:"createTime"`
}

// LoginUserVO is returned to the user who just logged in.
type LoginUserVO struct {
	UserVO
	Account string `json:"userAccount"`
	Token   string `json:"token,omitempty"`
}

// AppVO is the read-only projection of an App returned to clients.
// HasThumb and HasFavour are relative to the requesting user.
type AppVO struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createTime"`
	UpdatedAt time.Time `json:"updateTime"`
	TagList   []string  `json:"tagList"`
	User      *UserVO   `json:"user"`
	HasThumb  bool      `json:"hasThumb"`
	HasFavour bool      `json:"hasFavour"`
}

// NewUserVO projects u. It returns nil for a nil user.
func NewUserVO(u *User) *UserVO {
	if u == nil {
		return nil
	}
	name := u.Name
	if name == "" {
		name = u.Account
	}
	return &UserVO{
		ID:        u.ID,
		Name:      name,
		AvatarURL: u.AvatarURL,
		Profile:   u.Profile,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// NewAppVO copies the scalar fields of a and decodes its tags. Owner and
// per-viewer fields are left for the service to fill.
func NewAppVO(a *App) *AppVO {
	if a == nil {
		return nil
	}
	return &AppVO{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		UserID:    a.UserID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		TagList:   DecodeTags(a.Tags),
	}
}

// ToApp is the inverse of NewAppVO for the persisted fields.
func (vo *AppVO) ToApp() *App {
	if vo == nil {
		return nil
	}
	return &App{
		ID:        vo.ID,
		Title:     vo.Title,
		Content:   vo.Content,
		UserID:    vo.UserID,
		Tags:      EncodeTags(vo.TagList),
		CreatedAt: vo.CreatedAt,
		UpdatedAt: vo.UpdatedAt,
	}
}
