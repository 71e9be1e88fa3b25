package service

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/repository"
)

// fakeStore is an in-memory implementation of every repository interface.
// Call counters let tests check the batch lookups run once per page.
type fakeStore struct {
	mu sync.Mutex

	apps    map[int64]*model.App
	users   map[int64]*model.User
	thumbs  map[[2]int64]bool // {appID, userID}
	favours map[[2]int64]bool
	answers []model.UserAnswer
	nextID  int64

	lastQuery repository.AppQuery

	getUserCalls    int
	listUsersCalls  int
	thumbBatchCalls int
	favBatchCalls   int

	// set to simulate failures
	pageErr      error
	updateErr    error
	listUsersErr error
	thumbErr     error
}

var (
	_ repository.AppRepository      = (*fakeStore)(nil)
	_ repository.UserRepository     = (*fakeStore)(nil)
	_ repository.ReactionRepository = (*fakeStore)(nil)
	_ repository.AnswerRepository   = (*fakeStore)(nil)
)

func newFakeStore() *fakeStore {
	return &fakeStore{
		apps:    make(map[int64]*model.App),
		users:   make(map[int64]*model.User),
		thumbs:  make(map[[2]int64]bool),
		favours: make(map[[2]int64]bool),
		nextID:  1,
	}
}

func (f *fakeStore) id() int64 {
	id := f.nextID
	f.nextID++
	return id
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- apps ---

func (f *fakeStore) CreateApp(_ context.Context, app *model.App) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = f.id()
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	cp := *app
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeStore) GetAppByID(_ context.Context, id int64) (*model.App, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.apps[id]
	if !ok {
		return nil, apperror.NotFound("app", id)
	}
	cp := *a
	return &cp, nil
}

func (f *fakeStore) UpdateApp(_ context.Context, app *model.App) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.apps[app.ID]; !ok {
		return apperror.NotFound("app", app.ID)
	}
	cp := *app
	cp.UpdatedAt = time.Now()
	f.apps[app.ID] = &cp
	return nil
}

func (f *fakeStore) DeleteApp(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.apps[id]; !ok {
		return apperror.NotFound("app", id)
	}
	delete(f.apps, id)
	return nil
}

// PageApps honours the user and favour filters, which is all the service
// tests rely on. Records come back newest id first.
func (f *fakeStore) PageApps(_ context.Context, q repository.AppQuery) (*model.Page[model.App], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastQuery = q
	if f.pageErr != nil {
		return nil, f.pageErr
	}

	var all []model.App
	for _, a := range f.apps {
		if q.UserID > 0 && a.UserID != q.UserID {
			continue
		}
		if q.FavourUserID > 0 && !f.favours[[2]int64{a.ID, q.FavourUserID}] {
			continue
		}
		all = append(all, *a)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	current, size := q.Current, q.PageSize
	if current < 1 {
		current = 1
	}
	if size < 1 {
		size = 10
	}
	page := &model.Page[model.App]{Current: current, PageSize: size, Total: int64(len(all)), Records: []model.App{}}
	start := (current - 1) * size
	if start < int64(len(all)) {
		end := start + size
		if end > int64(len(all)) {
			end = int64(len(all))
		}
		page.Records = all[start:end]
	}
	return page, nil
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Account == user.Account {
			return apperror.Conflict("user", user.Account)
		}
	}
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	user.ID = f.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) Upsert(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	for _, u := range f.users {
		if u.GitHubID != 0 && u.GitHubID == user.GitHubID {
			u.Name = user.Name
			u.Email = user.Email
			u.AvatarURL = user.AvatarURL
			*user = *u
			f.mu.Unlock()
			return nil
		}
	}
	f.mu.Unlock()
	return f.CreateUser(ctx, user)
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getUserCalls++
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByAccount(_ context.Context, account string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Account == account {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.NotFound("user", account)
}

func (f *fakeStore) ListUsersByIDs(_ context.Context, ids []int64) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listUsersCalls++
	if f.listUsersErr != nil {
		return nil, f.listUsersErr
	}
	var out []model.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

// --- reactions ---

func (f *fakeStore) has(set map[[2]int64]bool, appID, userID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.thumbErr != nil {
		return false, f.thumbErr
	}
	return set[[2]int64{appID, userID}], nil
}

func (f *fakeStore) subset(set map[[2]int64]bool, userID int64, appIDs []int64) []int64 {
	var out []int64
	for _, id := range appIDs {
		if set[[2]int64{id, userID}] {
			out = append(out, id)
		}
	}
	return out
}

func (f *fakeStore) HasThumb(_ context.Context, appID, userID int64) (bool, error) {
	return f.has(f.thumbs, appID, userID)
}

func (f *fakeStore) HasFavour(_ context.Context, appID, userID int64) (bool, error) {
	return f.has(f.favours, appID, userID)
}

func (f *fakeStore) ThumbedAppIDs(_ context.Context, userID int64, appIDs []int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.thumbBatchCalls++
	if f.thumbErr != nil {
		return nil, f.thumbErr
	}
	return f.subset(f.thumbs, userID, appIDs), nil
}

func (f *fakeStore) FavouredAppIDs(_ context.Context, userID int64, appIDs []int64) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.favBatchCalls++
	return f.subset(f.favours, userID, appIDs), nil
}

func (f *fakeStore) add(set map[[2]int64]bool, appID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]int64{appID, userID}
	if set[k] {
		return apperror.Conflict("reaction", k)
	}
	set[k] = true
	return nil
}

func (f *fakeStore) remove(set map[[2]int64]bool, appID, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := [2]int64{appID, userID}
	if !set[k] {
		return apperror.NotFound("reaction", k)
	}
	delete(set, k)
	return nil
}

func (f *fakeStore) AddThumb(_ context.Context, appID, userID int64) error {
	return f.add(f.thumbs, appID, userID)
}

func (f *fakeStore) RemoveThumb(_ context.Context, appID, userID int64) error {
	return f.remove(f.thumbs, appID, userID)
}

func (f *fakeStore) AddFavour(_ context.Context, appID, userID int64) error {
	return f.add(f.favours, appID, userID)
}

func (f *fakeStore) RemoveFavour(_ context.Context, appID, userID int64) error {
	return f.remove(f.favours, appID, userID)
}

// --- answers ---

func (f *fakeStore) CreateAnswer(_ context.Context, a *model.UserAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.id()
	a.CreatedAt = time.Now()
	f.answers = append(f.answers, *a)
	return nil
}

func (f *fakeStore) AppAnswerCounts(_ context.Context, limit int) ([]model.AppAnswerCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[int64]int64{}
	for _, a := range f.answers {
		counts[a.AppID]++
	}
	var out []model.AppAnswerCount
	for id, n := range counts {
		out = append(out, model.AppAnswerCount{AppID: id, AnswerCount: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AnswerCount != out[j].AnswerCount {
			return out[i].AnswerCount > out[j].AnswerCount
		}
		return out[i].AppID < out[j].AppID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) AppAnswerResultCounts(_ context.Context, appID int64) ([]model.AppAnswerResultCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range f.answers {
		if a.AppID == appID {
			counts[a.ResultName]++
		}
	}
	var out []model.AppAnswerResultCount
	for name, n := range counts {
		out = append(out, model.AppAnswerResultCount{ResultName: name, ResultCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResultCount > out[j].ResultCount })
	return out, nil
}

// --- seed helpers ---

func (f *fakeStore) seedUser(account, role string) *model.User {
	u := &model.User{Account: account, Name: account, Role: role}
	if err := f.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fakeStore) seedApp(title string, owner *model.User, tags ...string) *model.App {
	a := &model.App{Title: title, Content: title + " content", UserID: owner.ID, Tags: model.EncodeTags(tags)}
	if err := f.CreateApp(context.Background(), a); err != nil {
		panic(err)
	}
	return a
}

func (f *fakeStore) resetCounters() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getUserCalls = 0
	f.listUsersCalls = 0
	f.thumbBatchCalls = 0
	f.favBatchCalls = 0
}

func pageQuery(current, size int64) repository.AppQuery {
	return repository.AppQuery{Current: current, PageSize: size}
}
