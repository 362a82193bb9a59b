package comments_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"postify/internal/comments"
	"postify/internal/core"

	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("network down")

type fakeSession struct {
	authenticated bool
}

func (s fakeSession) Token() string {
	return ""
}

func (s fakeSession) User() (core.User, bool) {
	return core.User{}, s.authenticated
}

func (s fakeSession) Authenticated() bool {
	return s.authenticated
}

func (s fakeSession) Identity() core.FeedIdentity {
	return core.FeedIdentity{Authenticated: s.authenticated}
}

type notices struct {
	warn  []string
	error []string
}

func (n *notices) Info(string) {}

func (n *notices) Warn(msg string) {
	n.warn = append(n.warn, msg)
}

func (n *notices) Error(msg string) {
	n.error = append(n.error, msg)
}

type fakeAPI struct {
	forest    []core.Comment
	getErr    error
	createErr error
	created   []string
	nextID    string
}

func (a *fakeAPI) GetComments(context.Context, string) ([]core.Comment, error) {
	return a.forest, a.getErr
}

func (a *fakeAPI) CreateComment(_ context.Context, postID, content, parentID string) (*core.Comment, error) {
	a.created = append(a.created, postID+":"+content+":"+parentID)
	if a.createErr != nil {
		return nil, a.createErr
	}
	return &core.Comment{ID: a.nextID, ContentText: content, ParentID: parentID}, nil
}

func newThread(api *fakeAPI, authenticated bool) (*comments.Thread, *notices) {
	n := &notices{}
	return comments.NewThread("p1", api, fakeSession{authenticated: authenticated}, n, slog.Default()), n
}

func TestThread_Load(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{forest: []core.Comment{comment("a", "", comment("b", "a"))}}
		thread, _ := newThread(api, false)

		require.NoError(t, thread.Load(t.Context()))
		require.Equal(t, "p1", thread.PostID())
		require.Equal(t, []string{"a"}, ids(thread.Comments()))

		found, ok := thread.Find("b")
		require.True(t, ok)
		require.Equal(t, "a", found.ParentID)
	})

	t.Run("failure keeps forest", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{forest: []core.Comment{comment("a", "")}}
		thread, n := newThread(api, false)
		require.NoError(t, thread.Load(t.Context()))

		api.getErr = errNetwork
		require.ErrorIs(t, thread.Load(t.Context()), errNetwork)
		require.Equal(t, []string{"a"}, ids(thread.Comments()))
		require.Equal(t, []string{errNetwork.Error()}, n.error)
	})
}

func TestThread_Reply(t *testing.T) {
	t.Parallel()

	seed := func() *fakeAPI {
		return &fakeAPI{forest: []core.Comment{comment("a", "", comment("b", "a"))}}
	}

	t.Run("nested", func(t *testing.T) {
		t.Parallel()

		api := seed()
		thread, _ := newThread(api, true)
		require.NoError(t, thread.Load(t.Context()))

		api.nextID = "c"
		created, err := thread.Reply(t.Context(), "  hi  ", "b")
		require.NoError(t, err)
		require.Equal(t, "c", created.ID)
		require.Equal(t, []string{"p1:hi:b"}, api.created)

		found, ok := thread.Find("c")
		require.True(t, ok)
		require.Equal(t, "hi", found.ContentText)
		require.Equal(t, []string{"c"}, ids(thread.Comments()[0].Replies[0].Replies))
	})

	t.Run("top level", func(t *testing.T) {
		t.Parallel()

		api := seed()
		thread, _ := newThread(api, true)
		require.NoError(t, thread.Load(t.Context()))

		api.nextID = "d"
		_, err := thread.Reply(t.Context(), "root", "")
		require.NoError(t, err)
		require.Equal(t, []string{"a", "d"}, ids(thread.Comments()))
	})

	t.Run("orphan dropped", func(t *testing.T) {
		t.Parallel()

		api := seed()
		thread, n := newThread(api, true)
		require.NoError(t, thread.Load(t.Context()))

		api.nextID = "c"
		_, err := thread.Reply(t.Context(), "late", "zzz")
		require.NoError(t, err)

		_, ok := thread.Find("c")
		require.False(t, ok)
		require.Equal(t, 2, comments.Count(thread.Comments()))
		require.Empty(t, n.error)
	})

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()

		api := seed()
		thread, n := newThread(api, true)

		_, err := thread.Reply(t.Context(), "   ", "")
		require.ErrorIs(t, err, core.ErrEmptyComment)
		require.Empty(t, api.created)
		require.Equal(t, []string{"Comment cannot be empty."}, n.warn)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		api := seed()
		thread, n := newThread(api, false)

		_, err := thread.Reply(t.Context(), "hi", "")
		require.ErrorIs(t, err, core.ErrAuthRequired)
		require.Empty(t, api.created)
		require.Equal(t, []string{"Please log in to comment."}, n.warn)
	})

	t.Run("server failure", func(t *testing.T) {
		t.Parallel()

		api := seed()
		api.createErr = errNetwork
		thread, n := newThread(api, true)
		require.NoError(t, thread.Load(t.Context()))

		_, err := thread.Reply(t.Context(), "hi", "a")
		require.ErrorIs(t, err, errNetwork)
		require.Equal(t, 2, comments.Count(thread.Comments()))
		require.Equal(t, []string{errNetwork.Error()}, n.error)
	})
}
