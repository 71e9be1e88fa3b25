// Package model defines the data structures used throughout the application:
// persisted entities, request DTOs, and response view objects.
package model

import (
	"encoding/json"
	"time"
)

// App is a shared question set / application owned by a user.
//
// Tags are persisted as a JSON-encoded array in a TEXT column. The raw
// column value lives in Tags; DecodeTags turns it into a slice at the view
// boundary.
type App struct {
	ID        int64     `json:"id"         db:"id"`
	Title     string    `json:"title"      db:"title"`
	Content   string    `json:"content"    db:"content"`
	UserID    int64     `json:"userId"     db:"user_id"`
	Tags      string    `json:"tags"       db:"tags"`
	CreatedAt time.Time `json:"createTime" db:"created_at"`
	UpdatedAt time.Time `json:"updateTime" db:"updated_at"`
}

// OwnerID makes App usable with auth.Authorize.
func (a *App) OwnerID() int64 {
	return a.UserID
}

// AppThumb records that a user liked an app. Existence of the row is the signal.
type AppThumb struct {
	ID        int64     `json:"id"`
	AppID     int64     `json:"appId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createTime"`
}

// AppFavour records that a user bookmarked an app.
type AppFavour struct {
	ID        int64     `json:"id"`
	AppID     int64     `json:"appId"`
	UserID    int64     `json:"userId"`
	CreatedAt time.Time `json:"createTime"`
}

// EncodeTags renders a tag list into its column form. A nil or empty list
// is stored as "[]" so the JSON functions in SQL always see an array.
func EncodeTags(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	b, err := json.Marshal(tags)
	if err != nil {
		// []string always marshals
		return "[]"
	}
	return string(b)
}

// DecodeTags parses the column form back into a slice. Malformed or empty
// values decode to an empty, non-nil slice.
func DecodeTags(raw string) []string {
	tags := []string{}
	if raw == "" {
		return tags
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}
