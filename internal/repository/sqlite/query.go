package sqlite

import (
	"strings"

	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// appSortColumns whitelists the sort fields a client may name. Keys are the
// JSON field names, values the real columns. Column names cannot be bound
// as parameters, so nothing outside this map ever reaches ORDER BY.
var appSortColumns = map[string]string{
	"id":         "id",
	"title":      "title",
	"userId":     "user_id",
	"createTime": "created_at",
	"updateTime": "updated_at",
}

// whereBuilder accumulates AND-ed clauses and their bound arguments.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (b *whereBuilder) add(clause string, args ...any) {
	b.clauses = append(b.clauses, clause)
	b.args = append(b.args, args...)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// buildAppWhere turns q into a WHERE clause (with leading space, or empty)
// and its arguments.
func buildAppWhere(q repository.AppQuery) (string, []any) {
	var b whereBuilder

	if s := strings.TrimSpace(q.SearchText); s != "" {
		pattern := likePattern(s)
		b.add(`(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if s := strings.TrimSpace(q.Title); s != "" {
		b.add(`title LIKE ? ESCAPE '\'`, likePattern(s))
	}
	if s := strings.TrimSpace(q.Content); s != "" {
		b.add(`content LIKE ? ESCAPE '\'`, likePattern(s))
	}

	// Exact element match inside the JSON array: "a" never matches "ab".
	for _, tag := range q.Tags {
		if tag == "" {
			continue
		}
		b.add(`EXISTS (SELECT 1 FROM json_each(apps.tags) WHERE json_each.value = ?)`, tag)
	}

	if q.NotID > 0 {
		b.add(`id != ?`, q.NotID)
	}
	if q.ID > 0 {
		b.add(`id = ?`, q.ID)
	}
	if q.UserID > 0 {
		b.add(`user_id = ?`, q.UserID)
	}
	if q.FavourUserID > 0 {
		b.add(`id IN (SELECT app_id FROM app_favours WHERE user_id = ?)`, q.FavourUserID)
	}

	return b.sql(), b.args
}

// appOrderBy renders the ORDER BY clause. Unknown fields fall back to
// newest-id-first; the direction is ascending only for an explicit
// "ascend", so a missing order means descending.
func appOrderBy(field, order string) string {
	col, ok := appSortColumns[field]
	if !ok {
		return " ORDER BY id DESC"
	}
	dir := "DESC"
	if order == model.SortOrderAsc {
		dir = "ASC"
	}
	// id breaks ties so pages never overlap
	if col == "id" {
		return " ORDER BY id " + dir
	}
	return " ORDER BY " + col + " " + dir + ", id " + dir
}

// normalizePage clamps the page number and size to sane values.
func normalizePage(current, size int64) (int64, int64) {
	if current < 1 {
		current = 1
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return current, size
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps s for a substring LIKE, escaping LIKE metacharacters
// so user input matches literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// inClause renders "(?, ?, ?)" for ids and returns the matching args.
// Callers must not pass an empty slice.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")", args
}
