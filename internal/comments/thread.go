package comments

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"postify/internal/core"
)

// Thread holds the comment forest of a single post.
type Thread struct {
	postID   string
	api      core.CommentsAPI
	session  core.Session
	notifier core.Notifier
	logger   *slog.Logger

	mu       sync.Mutex
	comments []core.Comment
}

func NewThread(postID string, api core.CommentsAPI, session core.Session, notifier core.Notifier, logger *slog.Logger) *Thread {
	return &Thread{
		postID:   postID,
		api:      api,
		session:  session,
		notifier: notifier,
		logger:   logger.With("component", "comments.Thread", "post_id", postID),
	}
}

func (t *Thread) PostID() string {
	return t.postID
}

func (t *Thread) Comments() []core.Comment {
	t.mu.Lock()
	defer t.mu.Unlock()

	return slices.Clone(t.comments)
}

func (t *Thread) Find(id string) (core.Comment, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Find(t.comments, id)
}

// Load replaces the forest with the server's.
func (t *Thread) Load(ctx context.Context) error {
	forest, err := t.api.GetComments(ctx, t.postID)
	if err != nil {
		t.report(err)
		return err
	}

	t.mu.Lock()
	t.comments = forest
	t.mu.Unlock()

	t.logger.Debug("comments loaded", "count", Count(forest))
	return nil
}

// Reply creates a comment, nested under parentID when it is not empty, and merges the
// server's copy into the forest.
func (t *Thread) Reply(ctx context.Context, content, parentID string) (core.Comment, error) {
	if !t.session.Authenticated() {
		t.warn("Please log in to comment.")
		return core.Comment{}, core.ErrAuthRequired
	}

	content = strings.TrimSpace(content)
	if content == "" {
		t.warn("Comment cannot be empty.")
		return core.Comment{}, core.ErrEmptyComment
	}

	created, err := t.api.CreateComment(ctx, t.postID, content, parentID)
	if err != nil {
		t.report(err)
		return core.Comment{}, err
	}

	t.mu.Lock()
	forest, placed := Insert(t.comments, *created)
	t.comments = forest
	t.mu.Unlock()

	if !placed {
		t.logger.Debug("reply parent not found, comment dropped", "id", created.ID, "parent_id", created.ParentID)
	}
	return *created, nil
}

func (t *Thread) report(err error) {
	t.logger.Error("comments request failed", "error", err)
	if t.notifier != nil {
		t.notifier.Error(err.Error())
	}
}

func (t *Thread) warn(msg string) {
	if t.notifier != nil {
		t.notifier.Warn(msg)
	}
}
