package postapi

import (
	"context"
	"encoding/json"

	"postify/internal/core"
)

const (
	userPath               = "/users/{username}"
	userPostsPath          = "/users/{username}/posts"
	followersPath          = "/users/{username}/followers"
	followingPath          = "/users/{username}/following"
	followPath             = "/users/{id}/follow"
	searchPath             = "/users/search"
	suggestionsPath        = "/users/suggestions"
	exploreSuggestionsPath = "/users/explore/suggestions"
	profilePath            = "/users/profile"
	privacyPath            = "/users/profile/privacy"
)

// userEnvelope decodes a user returned either directly or under a user field.
type userEnvelope struct {
	core.User
}

func (e *userEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		User *core.User `json:"user"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.User != nil {
		e.User = *wrapped.User
		return nil
	}
	return json.Unmarshal(data, &e.User)
}

func (c *Client) GetProfile(ctx context.Context, username string) (*core.UserProfile, error) {
	res, err := c.r(ctx).
		SetPathParam("username", username).
		SetResult(&core.UserProfile{}).
		Get(userPath)
	if err := check(opGetProfile, res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.UserProfile), nil
}

func (c *Client) GetUserPosts(ctx context.Context, username string) ([]core.Post, error) {
	res, err := c.r(ctx).
		SetPathParam("username", username).
		SetResult(&postList{}).
		Get(userPostsPath)
	if err := check(opGetUserPosts, res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*postList), nil
}

func (c *Client) Follow(ctx context.Context, userID string) error {
	res, err := c.r(ctx).SetPathParam("id", userID).Post(followPath)
	return check(opFollow, res, err)
}

func (c *Client) Unfollow(ctx context.Context, userID string) error {
	res, err := c.r(ctx).SetPathParam("id", userID).Delete(followPath)
	return check(opUnfollow, res, err)
}

func (c *Client) GetFollowers(ctx context.Context, username string) ([]core.User, error) {
	return c.getUsers(ctx, opGetFollowers, followersPath, "username", username)
}

func (c *Client) GetFollowing(ctx context.Context, username string) ([]core.User, error) {
	return c.getUsers(ctx, opGetFollowing, followingPath, "username", username)
}

func (c *Client) SearchUsers(ctx context.Context, query string) ([]core.User, error) {
	res, err := c.r(ctx).
		SetQueryParam("q", query).
		SetResult(&userList{}).
		Get(searchPath)
	if err := check(opSearch, res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*userList), nil
}

func (c *Client) GetSuggestions(ctx context.Context) ([]core.User, error) {
	return c.getUsers(ctx, opSuggestions, suggestionsPath, "", "")
}

func (c *Client) GetExploreSuggestions(ctx context.Context) ([]core.User, error) {
	return c.getUsers(ctx, opExplore, exploreSuggestionsPath, "", "")
}

// UpdateProfile returns the updated user when the server includes it.
func (c *Client) UpdateProfile(ctx context.Context, form core.ProfileForm) (*core.User, error) {
	res, err := c.r(ctx).
		SetBody(form).
		SetResult(&userEnvelope{}).
		Put(profilePath)
	if err := check(opUpdateProfile, res, err); err != nil {
		return nil, err
	}

	return returnedUser(res.Result()), nil
}

// UpdatePrivacy returns the updated user when the server includes it.
func (c *Client) UpdatePrivacy(ctx context.Context, private bool) (*core.User, error) {
	res, err := c.r(ctx).
		SetBody(map[string]bool{"is_private": private}).
		SetResult(&userEnvelope{}).
		Put(privacyPath)
	if err := check(opUpdatePrivacy, res, err); err != nil {
		return nil, err
	}

	return returnedUser(res.Result()), nil
}

func returnedUser(result any) *core.User {
	env, ok := result.(*userEnvelope)
	if !ok || env == nil || env.ID == "" {
		return nil
	}
	return &env.User
}
