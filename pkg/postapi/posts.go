package postapi

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"

	"postify/internal/core"
)

const (
	feedPath       = "/posts/feed"
	postsPath      = "/posts"
	postPath       = "/posts/{id}"
	categoriesPath = "/posts/categories"
	likePath       = "/posts/{id}/like"
	dislikePath    = "/posts/{id}/dislike"
	likersPath     = "/posts/{id}/likers"
	dislikersPath  = "/posts/{id}/dislikers"
)

// postList decodes either a bare array of posts or an object with a posts field.
type postList []core.Post

func (l *postList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]core.Post)(l))
	}

	var wrapped struct {
		Posts []core.Post `json:"posts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Posts
	return nil
}

// userList decodes either a bare array of users or an object with a users field.
type userList []core.User

func (l *userList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]core.User)(l))
	}

	var wrapped struct {
		Users []core.User `json:"users"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Users
	return nil
}

// postEnvelope decodes a post returned either directly or under a post field.
type postEnvelope struct {
	core.Post
}

func (e *postEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Post *core.Post `json:"post"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Post != nil {
		e.Post = *wrapped.Post
		return nil
	}
	return json.Unmarshal(data, &e.Post)
}

// GetFeed returns a page of the authenticated user's feed.
func (c *Client) GetFeed(ctx context.Context, page, limit int) (*core.FeedPage, error) {
	return c.getPage(ctx, opGetFeed, feedPath, page, limit)
}

// GetPosts returns a page of the public feed.
func (c *Client) GetPosts(ctx context.Context, page, limit int) (*core.FeedPage, error) {
	return c.getPage(ctx, opGetPosts, postsPath, page, limit)
}

func (c *Client) getPage(ctx context.Context, op operation, path string, page, limit int) (*core.FeedPage, error) {
	req := c.r(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetResult(&core.FeedPage{})
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}

	res, err := req.Get(path)
	if err := check(op, res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.FeedPage), nil
}

func (c *Client) CreatePost(ctx context.Context, form core.PostForm) (*core.Post, error) {
	res, err := c.r(ctx).
		SetBody(form).
		SetResult(&postEnvelope{}).
		Post(postsPath)
	if err := check(opCreatePost, res, err); err != nil {
		return nil, err
	}

	return &res.Result().(*postEnvelope).Post, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, form core.PostForm) (*core.Post, error) {
	res, err := c.r(ctx).
		SetPathParam("id", id).
		SetBody(form).
		SetResult(&postEnvelope{}).
		Put(postPath)
	if err := check(opUpdatePost, res, err); err != nil {
		return nil, err
	}

	return &res.Result().(*postEnvelope).Post, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	res, err := c.r(ctx).
		SetPathParam("id", id).
		Delete(postPath)
	return check(opDeletePost, res, err)
}

func (c *Client) GetCategories(ctx context.Context) ([]core.Category, error) {
	res, err := c.r(ctx).
		SetResult(&[]core.Category{}).
		Get(categoriesPath)
	if err := check(opGetCategories, res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*[]core.Category), nil
}

func (c *Client) LikePost(ctx context.Context, id string) error {
	res, err := c.r(ctx).SetPathParam("id", id).Post(likePath)
	return check(opLike, res, err)
}

func (c *Client) UnlikePost(ctx context.Context, id string) error {
	res, err := c.r(ctx).SetPathParam("id", id).Delete(likePath)
	return check(opUnlike, res, err)
}

func (c *Client) DislikePost(ctx context.Context, id string) error {
	res, err := c.r(ctx).SetPathParam("id", id).Post(dislikePath)
	return check(opDislike, res, err)
}

func (c *Client) UndislikePost(ctx context.Context, id string) error {
	res, err := c.r(ctx).SetPathParam("id", id).Delete(dislikePath)
	return check(opUndislike, res, err)
}

func (c *Client) GetLikers(ctx context.Context, id string) ([]core.User, error) {
	return c.getUsers(ctx, opGetLikers, likersPath, "id", id)
}

func (c *Client) GetDislikers(ctx context.Context, id string) ([]core.User, error) {
	return c.getUsers(ctx, opGetDislikers, dislikersPath, "id", id)
}

func (c *Client) getUsers(ctx context.Context, op operation, path, param, value string) ([]core.User, error) {
	req := c.r(ctx).SetResult(&userList{})
	if param != "" {
		req.SetPathParam(param, value)
	}

	res, err := req.Get(path)
	if err := check(op, res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*userList), nil
}
