package cmd

import (
	"context"
	"fmt"

	"postify/internal/auth"
	"postify/internal/core"

	"github.com/samber/do"
	"github.com/urfave/cli/v3"
)

var (
	emailFlag = &cli.StringFlag{
		Name:     "email",
		Usage:    "Account email",
		Required: true,
	}
	passwordFlag = &cli.StringFlag{
		Name:     "password",
		Usage:    "Account password",
		Required: true,
		Sources:  cli.EnvVars("POSTIFY_PASSWORD"),
	}
)

var registerCmd = &cli.Command{
	Name:  "register",
	Usage: "Create an account and log in",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "username", Usage: "Handle, letters, numbers and underscores", Required: true},
		&cli.StringFlag{Name: "name", Usage: "Display name"},
		emailFlag,
		passwordFlag,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			user, err := do.MustInvoke[*auth.Service](i).Register(ctx, core.RegisterForm{
				Username: c.String("username"),
				Name:     c.String("name"),
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(out(c), "registered as @%s\n", user.Username)
			return err
		})
	},
}

var loginCmd = &cli.Command{
	Name:  "login",
	Usage: "Log in and store the session",
	Flags: []cli.Flag{
		emailFlag,
		passwordFlag,
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			user, err := do.MustInvoke[*auth.Service](i).Login(ctx, core.LoginForm{
				Email:    c.String("email"),
				Password: c.String("password"),
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(out(c), "logged in as @%s\n", user.Username)
			return err
		})
	},
}

var logoutCmd = &cli.Command{
	Name:  "logout",
	Usage: "Clear the stored session",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			return do.MustInvoke[*auth.Service](i).Logout(ctx)
		})
	},
}
