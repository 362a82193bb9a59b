package feed_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"postify/internal/core"
	"postify/internal/feed"
)

var errNetwork = errors.New("network down")

type fakeSession struct {
	authenticated bool
}

func (s fakeSession) Token() string {
	if s.authenticated {
		return "token"
	}
	return ""
}

func (s fakeSession) User() (core.User, bool) {
	return core.User{ID: "me"}, s.authenticated
}

func (s fakeSession) Authenticated() bool {
	return s.authenticated
}

func (s fakeSession) Identity() core.FeedIdentity {
	if !s.authenticated {
		return core.FeedIdentity{}
	}
	return core.FeedIdentity{Authenticated: true, UserID: "me"}
}

type notices struct {
	mu    sync.Mutex
	info  []string
	warn  []string
	error []string
}

func (n *notices) Info(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.info = append(n.info, msg)
}

func (n *notices) Warn(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warn = append(n.warn, msg)
}

func (n *notices) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.error = append(n.error, msg)
}

func (n *notices) warnings() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.warn...)
}

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	pages     map[int]core.FeedPage
	pageErr   error
	reactErr  error
	createErr error

	// gate, when set, blocks page fetches until closed; started receives one value per blocked fetch.
	gate    chan struct{}
	started chan struct{}
	// reactGate and reactStarted do the same for reactions.
	reactGate    chan struct{}
	reactStarted chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{pages: map[int]core.FeedPage{}}
}

func (a *fakeAPI) record(call string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
}

func (a *fakeAPI) Calls() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.calls...)
}

func (a *fakeAPI) page(ctx context.Context, kind string, page int) (*core.FeedPage, error) {
	a.record(fmt.Sprintf("%s:%d", kind, page))

	if a.gate != nil {
		if a.started != nil {
			a.started <- struct{}{}
		}
		select {
		case <-a.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if a.pageErr != nil {
		return nil, a.pageErr
	}
	p := a.pages[page]
	return &p, nil
}

func (a *fakeAPI) GetFeed(ctx context.Context, page, _ int) (*core.FeedPage, error) {
	return a.page(ctx, "feed", page)
}

func (a *fakeAPI) GetPosts(ctx context.Context, page, _ int) (*core.FeedPage, error) {
	return a.page(ctx, "posts", page)
}

func (a *fakeAPI) CreatePost(_ context.Context, form core.PostForm) (*core.Post, error) {
	a.record("create")
	if a.createErr != nil {
		return nil, a.createErr
	}
	return &core.Post{ID: "new", Title: form.Title, ContentText: form.ContentText}, nil
}

func (a *fakeAPI) UpdatePost(_ context.Context, id string, form core.PostForm) (*core.Post, error) {
	a.record("update:" + id)
	if a.createErr != nil {
		return nil, a.createErr
	}
	return &core.Post{ID: id, Title: form.Title, ContentText: form.ContentText}, nil
}

func (a *fakeAPI) DeletePost(_ context.Context, id string) error {
	a.record("delete:" + id)
	return a.createErr
}

func (a *fakeAPI) react(call string) error {
	a.record(call)
	if a.reactGate != nil {
		a.reactStarted <- struct{}{}
		<-a.reactGate
	}
	return a.reactErr
}

func (a *fakeAPI) LikePost(_ context.Context, id string) error {
	return a.react("like:" + id)
}

func (a *fakeAPI) UnlikePost(_ context.Context, id string) error {
	return a.react("unlike:" + id)
}

func (a *fakeAPI) DislikePost(_ context.Context, id string) error {
	return a.react("dislike:" + id)
}

func (a *fakeAPI) UndislikePost(_ context.Context, id string) error {
	return a.react("undislike:" + id)
}

func posts(ids ...string) []core.Post {
	out := make([]core.Post, 0, len(ids))
	for _, id := range ids {
		out = append(out, core.Post{ID: id, Title: "post " + id})
	}
	return out
}

func newStore(t *testing.T, api *fakeAPI, authenticated bool) (*feed.Store, *notices) {
	t.Helper()

	n := &notices{}
	return feed.NewStore(api, fakeSession{authenticated: authenticated}, n, slog.Default()), n
}

// seeded returns an initialized authenticated store holding the given posts.
func seeded(t *testing.T, api *fakeAPI, list ...core.Post) (*feed.Store, *notices) {
	t.Helper()

	api.pages[1] = core.FeedPage{Posts: list, Pagination: core.Pagination{Page: 1, HasNextPage: true}}
	store, n := newStore(t, api, true)
	if err := store.Initialize(t.Context(), core.FeedIdentity{Authenticated: true, UserID: "me"}); err != nil {
		t.Fatal(err)
	}
	return store, n
}
