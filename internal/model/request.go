package model

// Sort orders accepted in PageRequest.SortOrder.
const (
	SortOrderAsc  = "ascend"
	SortOrderDesc = "descend"
)

// PageRequest carries pagination and ordering for list endpoints.
type PageRequest struct {
	Current   int64  `json:"current"`
	PageSize  int64  `json:"pageSize"`
	SortField string `json:"sortField"`
	SortOrder string `json:"sortOrder"`
}

// DeleteRequest identifies a record to delete.
type DeleteRequest struct {
	ID int64 `json:"id"`
}

// AppAddRequest is the body of POST /api/app/add.
type AppAddRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// AppEditRequest is the body of POST /api/app/edit.
//
// Nil fields are left untouched. An explicit empty tags array clears the tags.
type AppEditRequest struct {
	ID      int64    `json:"id"`
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

// AppUpdateRequest is the body of the admin-only POST /api/app/update.
type AppUpdateRequest struct {
	ID      int64    `json:"id"`
	Title   *string  `json:"title"`
	Content *string  `json:"content"`
	Tags    []string `json:"tags"`
}

// AppQueryRequest filters and pages the app list endpoints.
type AppQueryRequest struct {
	PageRequest
	ID         int64    `json:"id"`
	NotID      int64    `json:"notId"`
	SearchText string   `json:"searchText"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Tags       []string `json:"tags"`
	UserID     int64    `json:"userId"`
}

// ThumbRequest toggles the caller's like on an app.
type ThumbRequest struct {
	AppID int64 `json:"appId"`
}

// FavourRequest toggles the caller's bookmark on an app.
type FavourRequest struct {
	AppID int64 `json:"appId"`
}

// UserAnswerAddRequest records one completed answer sheet.
type UserAnswerAddRequest struct {
	AppID      int64    `json:"appId"`
	Choices    []string `json:"choices"`
	ResultName string   `json:"resultName"`
}

// UserRegisterRequest is the body of POST /api/user/register.
type UserRegisterRequest struct {
	Account       string `json:"userAccount"`
	Password      string `json:"userPassword"`
	CheckPassword string `json:"checkPassword"`
}

// UserLoginRequest is the body of POST /api/user/login.
type UserLoginRequest struct {
	Account  string `json:"userAccount"`
	Password string `json:"userPassword"`
}
