package postapi

import (
	"context"

	"postify/internal/core"
)

const (
	registerPath = "/auth/register"
	loginPath    = "/auth/login"
)

func (c *Client) Register(ctx context.Context, form core.RegisterForm) (*core.AuthResult, error) {
	res, err := c.r(ctx).
		SetBody(form).
		SetResult(&core.AuthResult{}).
		Post(registerPath)
	if err := check(opRegister, res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.AuthResult), nil
}

func (c *Client) Login(ctx context.Context, form core.LoginForm) (*core.AuthResult, error) {
	res, err := c.r(ctx).
		SetBody(form).
		SetResult(&core.AuthResult{}).
		Post(loginPath)
	if err := check(opLogin, res, err); err != nil {
		return nil, err
	}

	return res.Result().(*core.AuthResult), nil
}
