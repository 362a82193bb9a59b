package postapi

import (
	"bytes"
	"context"
	"encoding/json"

	"postify/internal/core"
)

const (
	commentsPath = "/posts/{id}/comments"
)

type commentList []core.Comment

func (l *commentList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]core.Comment)(l))
	}

	var wrapped struct {
		Comments []core.Comment `json:"comments"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Comments
	return nil
}

type commentEnvelope struct {
	core.Comment
}

func (e *commentEnvelope) UnmarshalJSON(data []byte) error {
	var wrapped struct {
		Comment *core.Comment `json:"comment"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && wrapped.Comment != nil {
		e.Comment = *wrapped.Comment
		return nil
	}
	return json.Unmarshal(data, &e.Comment)
}

// GetComments returns the nested comment forest of a post.
func (c *Client) GetComments(ctx context.Context, postID string) ([]core.Comment, error) {
	res, err := c.r(ctx).
		SetPathParam("id", postID).
		SetResult(&commentList{}).
		Get(commentsPath)
	if err := check(opGetComments, res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*commentList), nil
}

// CreateComment posts a comment. An empty parentID creates a top-level comment.
func (c *Client) CreateComment(ctx context.Context, postID, content, parentID string) (*core.Comment, error) {
	body := struct {
		ContentText string `json:"content_text"`
		ParentID    string `json:"parent_id,omitempty"`
	}{content, parentID}

	res, err := c.r(ctx).
		SetPathParam("id", postID).
		SetBody(body).
		SetResult(&commentEnvelope{}).
		Post(commentsPath)
	if err := check(opCreateComment, res, err); err != nil {
		return nil, err
	}

	comment := res.Result().(*commentEnvelope).Comment
	if comment.ParentID == "" {
		comment.ParentID = parentID
	}
	return &comment, nil
}
