package feed

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"postify/internal/core"

	"github.com/samber/lo"
)

const DefaultPageLimit = 10

// Store is the single source of truth for the posts currently shown.
// Every mutation replaces the posts slice instead of writing into it, so a
// captured slice stays a valid rollback snapshot.
type Store struct {
	api      core.FeedAPI
	session  core.Session
	notifier core.Notifier
	logger   *slog.Logger
	limit    int

	mu          sync.Mutex
	posts       []core.Post
	cursor      core.Cursor
	identity    core.FeedIdentity
	initialized bool
	generation  uint64
	// appends counts pages appended by LoadMore.
	appends uint64
}

type Option func(*Store)

func WithPageLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

func NewStore(api core.FeedAPI, session core.Session, notifier core.Notifier, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		api:      api,
		session:  session,
		notifier: notifier,
		logger:   logger.With("component", "feed.Store"),
		limit:    DefaultPageLimit,
		cursor:   core.Cursor{Page: 1, HasNextPage: true},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Posts returns a copy of the current list.
func (s *Store) Posts() []core.Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.posts)
}

func (s *Store) Post(id string) (core.Post, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return lo.Find(s.posts, func(p core.Post) bool { return p.ID == id })
}

func (s *Store) Cursor() core.Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cursor
}

// Initialize loads the first page for identity. Repeated calls with the same identity do nothing.
func (s *Store) Initialize(ctx context.Context, identity core.FeedIdentity) error {
	s.mu.Lock()
	if s.initialized && s.identity == identity {
		s.mu.Unlock()
		return nil
	}
	s.generation++
	gen := s.generation
	s.identity = identity
	s.initialized = true
	s.cursor = core.Cursor{Page: 1, HasNextPage: true, Loading: true}
	s.mu.Unlock()

	s.logger.Debug("initializing feed", "authenticated", identity.Authenticated, "user_id", identity.UserID)

	page, err := s.fetch(ctx, identity, 1)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil
	}
	s.cursor.Loading = false

	if err != nil {
		// Allow a retry with the same identity.
		s.initialized = false
		s.report(err)
		return err
	}

	s.posts = appendUnique(nil, page.Posts)
	s.cursor.HasNextPage = len(page.Posts) > 0 && page.Pagination.HasNextPage
	return nil
}

// LoadMore appends the next page. It is a no-op while a fetch is in flight or when no pages are left.
func (s *Store) LoadMore(ctx context.Context) error {
	s.mu.Lock()
	if !s.initialized || s.cursor.Loading || !s.cursor.HasNextPage {
		s.mu.Unlock()
		return nil
	}
	s.cursor.Loading = true
	gen := s.generation
	identity := s.identity
	next := s.cursor.Page + 1
	s.mu.Unlock()

	page, err := s.fetch(ctx, identity, next)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return nil
	}
	s.cursor.Loading = false

	if err != nil {
		s.report(err)
		return err
	}

	if len(page.Posts) == 0 {
		s.cursor.HasNextPage = false
		return nil
	}

	s.posts = appendUnique(s.posts, page.Posts)
	s.appends++
	s.cursor.Page = next
	s.cursor.HasNextPage = page.Pagination.HasNextPage

	s.logger.Debug("page loaded", "page", next, "posts", len(s.posts), "has_next_page", s.cursor.HasNextPage)
	return nil
}

// AddPost prepends post.
func (s *Store) AddPost(post core.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = append([]core.Post{post}, lo.Reject(s.posts, func(p core.Post, _ int) bool { return p.ID == post.ID })...)
}

// UpdatePost replaces the post with the same id in place.
func (s *Store) UpdatePost(post core.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replace(post)
}

func (s *Store) RemovePost(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = lo.Reject(s.posts, func(p core.Post, _ int) bool { return p.ID == id })
}

func (s *Store) replace(post core.Post) {
	_, idx, ok := lo.FindIndexOf(s.posts, func(p core.Post) bool { return p.ID == post.ID })
	if !ok {
		return
	}

	posts := slices.Clone(s.posts)
	posts[idx] = post
	s.posts = posts
}

func (s *Store) fetch(ctx context.Context, identity core.FeedIdentity, page int) (*core.FeedPage, error) {
	if identity.Authenticated {
		return s.api.GetFeed(ctx, page, s.limit)
	}
	return s.api.GetPosts(ctx, page, s.limit)
}

func (s *Store) report(err error) {
	s.logger.Error("feed request failed", "error", err)
	if s.notifier != nil {
		s.notifier.Error(err.Error())
	}
}

func (s *Store) warn(msg string) {
	if s.notifier != nil {
		s.notifier.Warn(msg)
	}
}

func appendUnique(posts []core.Post, page []core.Post) []core.Post {
	seen := lo.SliceToMap(posts, func(p core.Post) (string, struct{}) { return p.ID, struct{}{} })

	out := slices.Clone(posts)
	for _, p := range page {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		out = append(out, p)
	}
	return out
}
