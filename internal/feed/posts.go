package feed

import (
	"context"
	"strings"

	"postify/internal/core"
)

// CreatePost publishes a post and prepends the server's copy.
func (s *Store) CreatePost(ctx context.Context, form core.PostForm) (core.Post, error) {
	if !s.session.Authenticated() {
		s.warn("Please log in to create posts.")
		return core.Post{}, core.ErrAuthRequired
	}

	post, err := s.api.CreatePost(ctx, normalizeForm(form))
	if err != nil {
		s.report(err)
		return core.Post{}, err
	}

	s.AddPost(*post)
	if s.notifier != nil {
		s.notifier.Info("Post created successfully.")
	}
	return *post, nil
}

// EditPost updates a post on the server, then in place locally.
func (s *Store) EditPost(ctx context.Context, id string, form core.PostForm) (core.Post, error) {
	if !s.session.Authenticated() {
		s.warn("Please log in to edit posts.")
		return core.Post{}, core.ErrAuthRequired
	}

	post, err := s.api.UpdatePost(ctx, id, normalizeForm(form))
	if err != nil {
		s.report(err)
		return core.Post{}, err
	}

	if post.ID == "" {
		post.ID = id
	}
	s.UpdatePost(*post)
	if s.notifier != nil {
		s.notifier.Info("Post updated successfully.")
	}
	return *post, nil
}

// DeletePost removes a post on the server, then locally.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if !s.session.Authenticated() {
		s.warn("Please log in to delete posts.")
		return core.ErrAuthRequired
	}

	if err := s.api.DeletePost(ctx, id); err != nil {
		s.report(err)
		return err
	}

	s.RemovePost(id)
	return nil
}

func normalizeForm(form core.PostForm) core.PostForm {
	form.Title = strings.TrimSpace(form.Title)
	form.ContentText = strings.TrimSpace(form.ContentText)
	return form
}
