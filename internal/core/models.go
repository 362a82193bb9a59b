package core

import (
	"encoding/json"
	"time"
)

// Author is the embedded author of a post or a comment.
type Author struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Post is a single feed entry. UserHasLiked and UserHasDisliked are never both true.
type Post struct {
	ID          string    `json:"id"`
	Author      Author    `json:"author"`
	Title       string    `json:"title"`
	ContentText string    `json:"content_text"`
	ImageURL    string    `json:"image_url,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	LikesCount    Count `json:"likes_count"`
	DislikesCount Count `json:"dislikes_count"`
	CommentsCount Count `json:"comments_count"`

	UserHasLiked    bool `json:"user_has_liked"`
	UserHasDisliked bool `json:"user_has_disliked"`
}

// UnmarshalJSON accepts both created_at and createdAt, the server emits either.
func (p *Post) UnmarshalJSON(data []byte) error {
	type post Post
	aux := struct {
		*post
		CreatedAtCamel *time.Time `json:"createdAt"`
	}{post: (*post)(p)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() && aux.CreatedAtCamel != nil {
		p.CreatedAt = *aux.CreatedAtCamel
	}
	return nil
}

type Pagination struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total,omitempty"`
	HasNextPage bool `json:"hasNextPage"`
}

type FeedPage struct {
	Posts      []Post     `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// FeedIdentity selects which feed a store shows. Anonymous sessions read the public feed.
type FeedIdentity struct {
	Authenticated bool
	UserID        string
}

// Cursor is the pagination state of a feed.
type Cursor struct {
	Page        int
	HasNextPage bool
	Loading     bool
}

type PostForm struct {
	Title       string `json:"title"`
	ContentText string `json:"content_text"`
	ImageURL    string `json:"image_url,omitempty"`
	CategoryID  string `json:"category_id,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationDislike NotificationType = "dislike"
	NotificationComment NotificationType = "comment"
)

type Sender struct {
	Username string `json:"username"`
}

type Notification struct {
	ID        string           `json:"id"`
	Recipient string           `json:"recipient"`
	Sender    Sender           `json:"sender"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// UnmarshalJSON reads the identifier from either _id or id, and the timestamp from
// either created_at or createdAt.
func (n *Notification) UnmarshalJSON(data []byte) error {
	type notification Notification
	aux := struct {
		*notification
		MongoID        string     `json:"_id"`
		CreatedAtCamel *time.Time `json:"createdAt"`
	}{notification: (*notification)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.MongoID != "" {
		n.ID = aux.MongoID
	}
	if n.CreatedAt.IsZero() && aux.CreatedAtCamel != nil {
		n.CreatedAt = *aux.CreatedAtCamel
	}
	return nil
}

type Comment struct {
	ID          string    `json:"id"`
	ContentText string    `json:"content_text"`
	Author      Author    `json:"author"`
	CreatedAt   time.Time `json:"created_at"`
	ParentID    string    `json:"parent_id,omitempty"`
	Replies     []Comment `json:"replies,omitempty"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Role        Role      `json:"role,omitempty"`
	IsPrivate   bool      `json:"is_private"`
	IsFollowing bool      `json:"is_following,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type UserProfile struct {
	User

	FollowersCount Count `json:"followers_count"`
	FollowingCount Count `json:"following_count"`
}

type ProfileForm struct {
	Name      string `json:"name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type RegisterForm struct {
	Username string `json:"username" validate:"required,min=3,max=20,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
	Name     string `json:"name,omitempty" validate:"omitempty,min=3,max=30"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
