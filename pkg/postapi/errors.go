package postapi

import (
	"errors"
	"fmt"

	"resty.dev/v3"
)

var (
	ErrRequestFailed = errors.New("request failed")
)

// Error is the normalized failure of an API call. Message is safe to show to the user.
type Error struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Detail describes the failure for logs.
func (e *Error) Detail() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s: status %d: %s: %v", e.Op, e.Status, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
}

type serverError struct {
	Message string `json:"message"`
}

type operation struct {
	name     string
	fallback string
}

var (
	opRegister          = operation{"register", "Registration Failed."}
	opLogin             = operation{"login", "Login Failed"}
	opGetFeed           = operation{"get_feed", "Failed to fetch feed."}
	opGetPosts          = operation{"get_posts", "Failed to fetch posts."}
	opCreatePost        = operation{"create_post", "Post creation failed."}
	opUpdatePost        = operation{"update_post", "Failed to update post."}
	opDeletePost        = operation{"delete_post", "Failed to delete post."}
	opGetCategories     = operation{"get_categories", "Failed to fetch categories."}
	opLike              = operation{"like", "Failed to Like The Post"}
	opUnlike            = operation{"unlike", "Failed to Unlike The Post"}
	opDislike           = operation{"dislike", "Failed to Dislike The Post"}
	opUndislike         = operation{"undislike", "Failed to Remove Dislike"}
	opGetLikers         = operation{"get_likers", "Failed to fetch likers."}
	opGetDislikers      = operation{"get_dislikers", "Failed to fetch dislikers."}
	opGetComments       = operation{"get_comments", "Failed to fetch comments."}
	opCreateComment     = operation{"create_comment", "Failed to create comment."}
	opSearch            = operation{"search", "Search failed."}
	opSuggestions       = operation{"suggestions", "Failed to get suggestions."}
	opExplore           = operation{"explore", "Failed to get suggestions."}
	opFollow            = operation{"follow", "Failed to follow user."}
	opUnfollow          = operation{"unfollow", "Failed to unfollow user."}
	opGetFollowers      = operation{"get_followers", "Failed to fetch followers."}
	opGetFollowing      = operation{"get_following", "Failed to fetch following."}
	opGetProfile        = operation{"get_profile", "Failed to fetch user profile."}
	opGetUserPosts      = operation{"get_user_posts", "Failed to fetch user posts."}
	opUpdateProfile     = operation{"update_profile", "Failed to update profile."}
	opUpdatePrivacy     = operation{"update_privacy", "Failed to update privacy settings."}
	opGetNotifications  = operation{"get_notifications", "Failed to get notifications."}
	opMarkNotifications = operation{"mark_notifications_read", "Failed to mark notifications as read."}
)

// check converts a resty outcome into nil or an *Error.
func check(op operation, res *resty.Response, err error) error {
	if err == nil && res != nil && res.IsSuccess() {
		return nil
	}

	apiErr := &Error{
		Op:      op.name,
		Message: op.fallback,
		Err:     err,
	}

	if res != nil && res.StatusCode() > 0 {
		apiErr.Status = res.StatusCode()
		if se, ok := res.Error().(*serverError); ok && se != nil && se.Message != "" {
			apiErr.Message = se.Message
		}
	}

	if apiErr.Err == nil {
		apiErr.Err = fmt.Errorf("%w: %s", ErrRequestFailed, res.Status())
	}

	return apiErr
}
