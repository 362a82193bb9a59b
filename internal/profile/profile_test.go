package profile_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"postify/internal/core"
	"postify/internal/metrics"
	"postify/internal/profile"
	"postify/internal/session"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

var errNetwork = errors.New("network down")

type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	profile    core.UserProfile
	posts      []core.Post
	profileErr error
	postsErr   error
	followErr  error
	updateErr  error
}

func (a *fakeAPI) record(call string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, call)
}

func (a *fakeAPI) GetProfile(_ context.Context, username string) (*core.UserProfile, error) {
	a.record("profile:" + username)
	if a.profileErr != nil {
		return nil, a.profileErr
	}
	p := a.profile
	return &p, nil
}

func (a *fakeAPI) GetUserPosts(_ context.Context, username string) ([]core.Post, error) {
	a.record("posts:" + username)
	return a.posts, a.postsErr
}

func (a *fakeAPI) Follow(_ context.Context, id string) error {
	a.record("follow:" + id)
	return a.followErr
}

func (a *fakeAPI) Unfollow(_ context.Context, id string) error {
	a.record("unfollow:" + id)
	return a.followErr
}

func (a *fakeAPI) UpdateProfile(_ context.Context, form core.ProfileForm) (*core.User, error) {
	a.record("update:" + form.Name)
	if a.updateErr != nil {
		return nil, a.updateErr
	}
	return &core.User{ID: "me", Username: "me", Name: form.Name, Bio: form.Bio}, nil
}

func (a *fakeAPI) UpdatePrivacy(_ context.Context, private bool) (*core.User, error) {
	a.record("privacy")
	if a.updateErr != nil {
		return nil, a.updateErr
	}
	return &core.User{ID: "me", Username: "me", IsPrivate: private}, nil
}

type notices struct {
	info []string
	warn []string
}

func (n *notices) Info(msg string) {
	n.info = append(n.info, msg)
}

func (n *notices) Warn(msg string) {
	n.warn = append(n.warn, msg)
}

func (n *notices) Error(string) {}

func bob(following bool, followers int) core.UserProfile {
	return core.UserProfile{
		User:           core.User{ID: "u-bob", Username: "bob", IsFollowing: following},
		FollowersCount: core.NewCount(followers),
		FollowingCount: core.NewCount(3),
	}
}

func newView(t *testing.T, api *fakeAPI, loggedIn bool) (*profile.View, *session.Session, *notices) {
	t.Helper()

	s := session.New(session.NewMemoryStore(), slog.Default())
	if loggedIn {
		require.NoError(t, s.Login(t.Context(), "token", core.User{ID: "me", Username: "me"}))
	}

	n := &notices{}
	return profile.NewView(api, s, n, slog.Default()), s, n
}

func TestView_Open(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: bob(false, 10), posts: []core.Post{{ID: "p1"}, {ID: "p2"}}}
		v, _, _ := newView(t, api, false)

		require.NoError(t, v.Open(t.Context(), " bob "))

		p, ok := v.Profile()
		require.True(t, ok)
		require.Equal(t, "bob", p.Username)
		require.Len(t, v.Posts(), 2)
		require.ElementsMatch(t, []string{"profile:bob", "posts:bob"}, api.calls)
	})

	t.Run("failure keeps previous", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: bob(false, 10)}
		v, _, _ := newView(t, api, false)
		require.NoError(t, v.Open(t.Context(), "bob"))

		api.postsErr = errNetwork
		require.ErrorIs(t, v.Open(t.Context(), "alice"), errNetwork)

		p, ok := v.Profile()
		require.True(t, ok)
		require.Equal(t, "bob", p.Username)
	})
}

func TestView_ToggleFollow(t *testing.T) {
	t.Parallel()

	t.Run("follow", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: bob(false, 10)}
		v, _, n := newView(t, api, true)
		require.NoError(t, v.Open(t.Context(), "bob"))

		require.NoError(t, v.ToggleFollow(t.Context()))

		p, _ := v.Profile()
		require.True(t, p.IsFollowing)
		require.Equal(t, core.NewCount(11), p.FollowersCount)
		require.Contains(t, api.calls, "follow:u-bob")
		require.Equal(t, []string{"You are now following bob."}, n.info)
	})

	t.Run("unfollow", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: bob(true, 10)}
		v, _, _ := newView(t, api, true)
		require.NoError(t, v.Open(t.Context(), "bob"))

		require.NoError(t, v.ToggleFollow(t.Context()))

		p, _ := v.Profile()
		require.False(t, p.IsFollowing)
		require.Equal(t, core.NewCount(9), p.FollowersCount)
		require.Contains(t, api.calls, "unfollow:u-bob")
	})

	t.Run("rollback", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: bob(false, 10), followErr: errNetwork}
		v, _, n := newView(t, api, true)
		require.NoError(t, v.Open(t.Context(), "bob"))
		before, _ := v.Profile()
		rollbacks := testutil.ToFloat64(metrics.Rollbacks.WithLabelValues("profile"))

		require.ErrorIs(t, v.ToggleFollow(t.Context()), errNetwork)

		after, _ := v.Profile()
		require.Equal(t, before, after)
		require.InDelta(t, rollbacks+1, testutil.ToFloat64(metrics.Rollbacks.WithLabelValues("profile")), 0)
		require.Equal(t, []string{"Failed to update follow status."}, n.warn)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: bob(false, 10)}
		v, _, n := newView(t, api, false)
		require.NoError(t, v.Open(t.Context(), "bob"))

		require.ErrorIs(t, v.ToggleFollow(t.Context()), core.ErrAuthRequired)
		require.NotContains(t, api.calls, "follow:u-bob")
		require.Equal(t, []string{"Please log in to follow users."}, n.warn)
	})

	t.Run("not open", func(t *testing.T) {
		t.Parallel()

		v, _, _ := newView(t, &fakeAPI{}, true)
		require.ErrorIs(t, v.ToggleFollow(t.Context()), profile.ErrNotOpen)
	})

	t.Run("self", func(t *testing.T) {
		t.Parallel()

		me := core.UserProfile{User: core.User{ID: "me", Username: "me"}}
		api := &fakeAPI{profile: me}
		v, _, _ := newView(t, api, true)
		require.NoError(t, v.Open(t.Context(), "me"))

		require.ErrorIs(t, v.ToggleFollow(t.Context()), profile.ErrSelfFollow)
	})
}

func TestView_UpdateProfile(t *testing.T) {
	t.Parallel()

	t.Run("refreshes session and open profile", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{profile: core.UserProfile{User: core.User{ID: "me", Username: "me"}, FollowersCount: 4}}
		v, s, n := newView(t, api, true)
		require.NoError(t, v.Open(t.Context(), "me"))

		user, err := v.UpdateProfile(t.Context(), core.ProfileForm{Name: " Me Myself ", Bio: "hi"})
		require.NoError(t, err)
		require.Equal(t, "Me Myself", user.Name)

		current, _ := s.User()
		require.Equal(t, "Me Myself", current.Name)

		p, _ := v.Profile()
		require.Equal(t, "hi", p.Bio)
		require.Equal(t, core.NewCount(4), p.FollowersCount)
		require.Equal(t, []string{"Profile updated successfully."}, n.info)
	})

	t.Run("privacy", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{}
		v, s, _ := newView(t, api, true)

		user, err := v.UpdatePrivacy(t.Context(), true)
		require.NoError(t, err)
		require.True(t, user.IsPrivate)

		current, _ := s.User()
		require.True(t, current.IsPrivate)
	})

	t.Run("failure leaves session", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{updateErr: errNetwork}
		v, s, _ := newView(t, api, true)

		_, err := v.UpdateProfile(t.Context(), core.ProfileForm{Name: "New"})
		require.ErrorIs(t, err, errNetwork)

		current, _ := s.User()
		require.Empty(t, current.Name)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		t.Parallel()

		api := &fakeAPI{}
		v, _, _ := newView(t, api, false)

		_, err := v.UpdatePrivacy(t.Context(), true)
		require.ErrorIs(t, err, core.ErrAuthRequired)
		require.Empty(t, api.calls)
	})
}
