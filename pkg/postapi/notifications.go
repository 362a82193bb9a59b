package postapi

import (
	"bytes"
	"context"
	"encoding/json"

	"postify/internal/core"
)

const (
	notificationsPath     = "/notifications"
	notificationsReadPath = "/notifications/read"
)

type notificationList []core.Notification

func (l *notificationList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, (*[]core.Notification)(l))
	}

	var wrapped struct {
		Notifications []core.Notification `json:"notifications"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*l = wrapped.Notifications
	return nil
}

// GetNotifications is served by the notification service.
func (c *Client) GetNotifications(ctx context.Context) ([]core.Notification, error) {
	res, err := c.r(ctx).
		SetResult(&notificationList{}).
		Get(c.notificationsURL + notificationsPath)
	if err := check(opGetNotifications, res, err); err != nil {
		return nil, err
	}

	return *res.Result().(*notificationList), nil
}

func (c *Client) MarkNotificationsRead(ctx context.Context) error {
	res, err := c.r(ctx).Post(c.notificationsURL + notificationsReadPath)
	return check(opMarkNotifications, res, err)
}
