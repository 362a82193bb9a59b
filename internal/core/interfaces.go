package core

import (
	"context"
)

type TokenSource interface {
	Token() string
}

// KeyValueStore persists session state. Get returns ErrKeyNotFound for missing keys.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Notifier shows transient notices to the user.
type Notifier interface {
	Info(msg string)
	Warn(msg string)
	Error(msg string)
}

type Session interface {
	TokenSource
	User() (User, bool)
	Authenticated() bool
	Identity() FeedIdentity
}

type FeedAPI interface {
	GetFeed(ctx context.Context, page, limit int) (*FeedPage, error)
	GetPosts(ctx context.Context, page, limit int) (*FeedPage, error)

	CreatePost(ctx context.Context, form PostForm) (*Post, error)
	UpdatePost(ctx context.Context, id string, form PostForm) (*Post, error)
	DeletePost(ctx context.Context, id string) error

	LikePost(ctx context.Context, id string) error
	UnlikePost(ctx context.Context, id string) error
	DislikePost(ctx context.Context, id string) error
	UndislikePost(ctx context.Context, id string) error
}

type NotificationsAPI interface {
	GetNotifications(ctx context.Context) ([]Notification, error)
	MarkNotificationsRead(ctx context.Context) error
}

type CommentsAPI interface {
	GetComments(ctx context.Context, postID string) ([]Comment, error)
	CreateComment(ctx context.Context, postID, content, parentID string) (*Comment, error)
}

type UsersAPI interface {
	GetProfile(ctx context.Context, username string) (*UserProfile, error)
	GetUserPosts(ctx context.Context, username string) ([]Post, error)
	Follow(ctx context.Context, userID string) error
	Unfollow(ctx context.Context, userID string) error
	UpdateProfile(ctx context.Context, form ProfileForm) (*User, error)
	UpdatePrivacy(ctx context.Context, private bool) (*User, error)
}

type SearchAPI interface {
	SearchUsers(ctx context.Context, query string) ([]User, error)
}

type AuthAPI interface {
	Login(ctx context.Context, form LoginForm) (*AuthResult, error)
	Register(ctx context.Context, form RegisterForm) (*AuthResult, error)
}
