package feed

import (
	"context"
	"slices"

	"postify/internal/core"
	"postify/internal/metrics"
)

type reaction struct {
	name       string
	authNotice string
	failNotice string

	// apply flips the reaction on p and clears the opposite one.
	apply func(p *core.Post)
	// active reports the reaction state before the flip.
	active func(p core.Post) bool
	// call picks the confirming request from the state before the flip.
	call func(api core.FeedAPI, wasActive bool) func(ctx context.Context, id string) error
}

var like = reaction{
	name:       "like",
	authNotice: "Please log in to like posts.",
	failNotice: "Failed to update like.",
	active:     func(p core.Post) bool { return p.UserHasLiked },
	apply: func(p *core.Post) {
		if p.UserHasLiked {
			p.UserHasLiked = false
			p.LikesCount = p.LikesCount.Add(-1)
			return
		}
		p.UserHasLiked = true
		p.LikesCount = p.LikesCount.Add(1)
		if p.UserHasDisliked {
			p.UserHasDisliked = false
			p.DislikesCount = p.DislikesCount.Add(-1)
		}
	},
	call: func(api core.FeedAPI, wasActive bool) func(ctx context.Context, id string) error {
		if wasActive {
			return api.UnlikePost
		}
		return api.LikePost
	},
}

var dislike = reaction{
	name:       "dislike",
	authNotice: "Please log in to dislike posts.",
	failNotice: "Failed to update dislike.",
	active:     func(p core.Post) bool { return p.UserHasDisliked },
	apply: func(p *core.Post) {
		if p.UserHasDisliked {
			p.UserHasDisliked = false
			p.DislikesCount = p.DislikesCount.Add(-1)
			return
		}
		p.UserHasDisliked = true
		p.DislikesCount = p.DislikesCount.Add(1)
		if p.UserHasLiked {
			p.UserHasLiked = false
			p.LikesCount = p.LikesCount.Add(-1)
		}
	},
	call: func(api core.FeedAPI, wasActive bool) func(ctx context.Context, id string) error {
		if wasActive {
			return api.UndislikePost
		}
		return api.DislikePost
	},
}

// ToggleLike flips the like on a post optimistically and confirms it with the server.
func (s *Store) ToggleLike(ctx context.Context, id string) error {
	return s.toggle(ctx, id, like)
}

// ToggleDislike flips the dislike on a post optimistically and confirms it with the server.
func (s *Store) ToggleDislike(ctx context.Context, id string) error {
	return s.toggle(ctx, id, dislike)
}

func (s *Store) toggle(ctx context.Context, id string, r reaction) error {
	if !s.session.Authenticated() {
		s.warn(r.authNotice)
		metrics.Reactions.WithLabelValues(r.name, "unauthenticated").Inc()
		return core.ErrAuthRequired
	}

	s.mu.Lock()
	idx := slices.IndexFunc(s.posts, func(p core.Post) bool { return p.ID == id })
	if idx < 0 {
		s.mu.Unlock()
		return nil
	}

	snapshot := s.posts
	original := s.posts[idx]
	gen, appends := s.generation, s.appends

	posts := slices.Clone(s.posts)
	wasActive := r.active(posts[idx])
	r.apply(&posts[idx])
	s.posts = posts
	s.mu.Unlock()

	err := r.call(s.api, wasActive)(ctx, id)
	if err == nil {
		metrics.Reactions.WithLabelValues(r.name, "ok").Inc()
		return nil
	}

	s.mu.Lock()
	switch {
	case gen != s.generation:
	case appends == s.appends:
		s.posts = snapshot
	default:
		// A page arrived in the meantime, keep it and undo only the toggled post.
		s.replace(original)
	}
	s.mu.Unlock()

	metrics.Reactions.WithLabelValues(r.name, "failed").Inc()
	metrics.Rollbacks.WithLabelValues("feed").Inc()
	s.logger.Warn("reaction rolled back", "reaction", r.name, "post_id", id, "error", err)
	s.warn(r.failNotice)

	return err
}
