package profile

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"postify/internal/core"
	"postify/internal/metrics"

	"golang.org/x/sync/errgroup"
)

var (
	ErrNotOpen    = errors.New("no profile open")
	ErrSelfFollow = errors.New("cannot follow yourself")
)

// Session is the part of the session a profile view updates.
type Session interface {
	core.Session
	UpdateUser(ctx context.Context, user core.User) error
}

// View holds one user's profile and posts.
type View struct {
	api      core.UsersAPI
	session  Session
	notifier core.Notifier
	logger   *slog.Logger

	mu         sync.Mutex
	profile    *core.UserProfile
	posts      []core.Post
	generation uint64
}

func NewView(api core.UsersAPI, session Session, notifier core.Notifier, logger *slog.Logger) *View {
	return &View{
		api:      api,
		session:  session,
		notifier: notifier,
		logger:   logger.With("component", "profile.View"),
	}
}

func (v *View) Profile() (core.UserProfile, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.profile == nil {
		return core.UserProfile{}, false
	}
	return *v.profile, true
}

func (v *View) Posts() []core.Post {
	v.mu.Lock()
	defer v.mu.Unlock()

	return slices.Clone(v.posts)
}

// Open loads the profile and posts of username concurrently and replaces the view on success.
func (v *View) Open(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)

	var (
		profile *core.UserProfile
		posts   []core.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = v.api.GetProfile(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = v.api.GetUserPosts(gctx, username)
		return err
	})

	if err := g.Wait(); err != nil {
		v.report(err)
		return err
	}

	v.mu.Lock()
	v.profile = profile
	v.posts = posts
	v.generation++
	v.mu.Unlock()

	v.logger.Debug("profile opened", "username", username, "posts", len(posts))
	return nil
}

// ToggleFollow follows or unfollows the open profile optimistically and restores it if the
// server rejects the change.
func (v *View) ToggleFollow(ctx context.Context) error {
	if !v.session.Authenticated() {
		v.warn("Please log in to follow users.")
		return core.ErrAuthRequired
	}

	v.mu.Lock()
	if v.profile == nil {
		v.mu.Unlock()
		return ErrNotOpen
	}
	if me, ok := v.session.User(); ok && me.ID == v.profile.ID {
		v.mu.Unlock()
		return ErrSelfFollow
	}

	snapshot := v.profile
	gen := v.generation

	next := *v.profile
	wasFollowing := next.IsFollowing
	if wasFollowing {
		next.FollowersCount = next.FollowersCount.Add(-1)
	} else {
		next.FollowersCount = next.FollowersCount.Add(1)
	}
	next.IsFollowing = !wasFollowing
	v.profile = &next
	v.mu.Unlock()

	call := v.api.Follow
	if wasFollowing {
		call = v.api.Unfollow
	}

	err := call(ctx, next.ID)
	if err == nil {
		if wasFollowing {
			v.info("Unfollowed " + next.Username + ".")
		} else {
			v.info("You are now following " + next.Username + ".")
		}
		return nil
	}

	v.mu.Lock()
	if gen == v.generation {
		v.profile = snapshot
	}
	v.mu.Unlock()

	metrics.Rollbacks.WithLabelValues("profile").Inc()
	v.logger.Warn("follow rolled back", "user_id", next.ID, "error", err)
	v.warn("Failed to update follow status.")

	return err
}

// UpdateProfile saves the signed-in user's profile fields.
func (v *View) UpdateProfile(ctx context.Context, form core.ProfileForm) (core.User, error) {
	form.Name = strings.TrimSpace(form.Name)
	form.Bio = strings.TrimSpace(form.Bio)
	form.AvatarURL = strings.TrimSpace(form.AvatarURL)

	return v.updateUser(ctx, "Profile updated successfully.", func(ctx context.Context) (*core.User, error) {
		return v.api.UpdateProfile(ctx, form)
	})
}

// UpdatePrivacy switches the signed-in user's account between public and private.
func (v *View) UpdatePrivacy(ctx context.Context, private bool) (core.User, error) {
	return v.updateUser(ctx, "Privacy settings updated.", func(ctx context.Context) (*core.User, error) {
		return v.api.UpdatePrivacy(ctx, private)
	})
}

func (v *View) updateUser(ctx context.Context, notice string, call func(context.Context) (*core.User, error)) (core.User, error) {
	current, ok := v.session.User()
	if !ok || !v.session.Authenticated() {
		v.warn("Please log in to update your profile.")
		return core.User{}, core.ErrAuthRequired
	}

	user, err := call(ctx)
	if err != nil {
		v.report(err)
		return core.User{}, err
	}
	if user == nil {
		v.info(notice)
		return current, nil
	}

	if err := v.session.UpdateUser(ctx, *user); err != nil {
		v.logger.Error("failed to store user snapshot", "error", err)
	}

	v.mu.Lock()
	if v.profile != nil && v.profile.ID == user.ID {
		next := *v.profile
		next.User = *user
		v.profile = &next
	}
	v.mu.Unlock()

	v.info(notice)
	return *user, nil
}

func (v *View) report(err error) {
	v.logger.Error("profile request failed", "error", err)
	if v.notifier != nil {
		v.notifier.Error(err.Error())
	}
}

func (v *View) info(msg string) {
	if v.notifier != nil {
		v.notifier.Info(msg)
	}
}

func (v *View) warn(msg string) {
	if v.notifier != nil {
		v.notifier.Warn(msg)
	}
}
