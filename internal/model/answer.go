package model

import "time"

// UserAnswer is one completed run of an app by a user. The statistics
// endpoints aggregate over these rows.
type UserAnswer struct {
	ID         int64     `json:"id"`
	AppID      int64     `json:"appId"`
	UserID     int64     `json:"userId"`
	Choices    string    `json:"choices"`
	ResultName string    `json:"resultName"`
	CreatedAt  time.Time `json:"createTime"`
}

// AppAnswerCount is one row of the hottest-apps ranking.
type AppAnswerCount struct {
	AppID       int64 `json:"appId"`
	AnswerCount int64 `json:"answerCount"`
}

// AppAnswerResultCount is one bucket of an app's result distribution.
type AppAnswerResultCount struct {
	ResultName  string `json:"resultName"`
	ResultCount int64  `json:"resultCount"`
}
