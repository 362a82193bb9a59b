package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"postify/internal/config"
	"postify/internal/core"
	"postify/internal/profile"
	"postify/internal/search"
	"postify/pkg/postapi"

	"github.com/k0kubun/pp"
	"github.com/samber/do"
	"github.com/urfave/cli/v3"
)

var (
	errMissingUsername = errors.New("username is required")
	errInvalidPrivacy  = errors.New("privacy must be public or private")
)

var profileCmd = &cli.Command{
	Name:      "profile",
	Usage:     "Show a user's profile and posts",
	ArgsUsage: "<username>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "follow", Usage: "Toggle following the user"},
		&cli.BoolFlag{Name: "followers", Usage: "List the user's followers"},
		&cli.BoolFlag{Name: "following", Usage: "List the accounts the user follows"},
	},
	Commands: []*cli.Command{
		{
			Name:  "update",
			Usage: "Update your own profile",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Usage: "Display name"},
				&cli.StringFlag{Name: "bio", Usage: "Bio"},
				&cli.StringFlag{Name: "avatar-url", Usage: "Avatar URL"},
				&cli.StringFlag{Name: "privacy", Usage: "Account visibility: public or private"},
			},
			Action: func(ctx context.Context, c *cli.Command) error {
				return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
					view := do.MustInvoke[*profile.View](i)

					var user core.User
					var err error

					if c.IsSet("name") || c.IsSet("bio") || c.IsSet("avatar-url") {
						user, err = view.UpdateProfile(ctx, core.ProfileForm{
							Name:      c.String("name"),
							Bio:       c.String("bio"),
							AvatarURL: c.String("avatar-url"),
						})
						if err != nil {
							return err
						}
					}

					switch c.String("privacy") {
					case "":
					case "public", "private":
						user, err = view.UpdatePrivacy(ctx, c.String("privacy") == "private")
						if err != nil {
							return err
						}
					default:
						return errInvalidPrivacy
					}

					return printUsers(out(c), []core.User{user})
				})
			},
		},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		username := c.Args().First()
		if username == "" {
			return errMissingUsername
		}

		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			view := do.MustInvoke[*profile.View](i)
			client := do.MustInvoke[*postapi.Client](i)
			w := out(c)

			if err := view.Open(ctx, username); err != nil {
				return err
			}
			if c.Bool("follow") {
				if err := view.ToggleFollow(ctx); err != nil {
					return err
				}
			}

			p, _ := view.Profile()
			if _, err := pp.Fprintln(w, p); err != nil {
				return err
			}
			if err := printPosts(w, view.Posts()); err != nil {
				return err
			}

			if c.Bool("followers") {
				users, err := client.GetFollowers(ctx, username)
				if err != nil {
					return err
				}
				if err := printUsers(w, users); err != nil {
					return err
				}
			}
			if c.Bool("following") {
				users, err := client.GetFollowing(ctx, username)
				if err != nil {
					return err
				}
				return printUsers(w, users)
			}
			return nil
		})
	},
}

var searchCmd = &cli.Command{
	Name:      "search",
	Usage:     "Search users by name; without a query, search as you type on stdin",
	ArgsUsage: "[query]",
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			cfg := do.MustInvoke[*config.Config](i)
			w := out(c)

			results := make(chan []core.User, 1)
			debouncer := search.NewDebouncer(
				do.MustInvoke[*postapi.Client](i),
				cfg.SearchDebounce,
				func(query string, users []core.User) {
					if query == "" {
						return
					}
					select {
					case results <- users:
					case <-ctx.Done():
					}
				},
				do.MustInvoke[core.Notifier](i),
				do.MustInvoke[*slog.Logger](i),
			)
			defer debouncer.Stop()

			if query := strings.Join(c.Args().Slice(), " "); query != "" {
				debouncer.Type(ctx, query)
				select {
				case users := <-results:
					return printUsers(w, users)
				case <-ctx.Done():
					return nil
				}
			}

			grace := cfg.SearchDebounce + postapi.DefaultConfig.Timeout
			return searchAsYouType(ctx, os.Stdin, w, debouncer, results, grace)
		})
	},
}

// searchAsYouType treats every stdin line as the current contents of the search box.
// After EOF it waits up to grace for the last pending search.
func searchAsYouType(ctx context.Context, r io.Reader, w io.Writer, debouncer *search.Debouncer,
	results <-chan []core.User, grace time.Duration,
) error {
	lines := make(chan string)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	var (
		input    = lines
		deadline <-chan time.Time
		last     string
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline:
			return nil
		case line, ok := <-input:
			if !ok {
				if strings.TrimSpace(last) == "" {
					return nil
				}
				input = nil
				deadline = time.After(grace)
				continue
			}
			last = line
			debouncer.Type(ctx, line)
		case users := <-results:
			if err := printUsers(w, users); err != nil {
				return err
			}
			if input == nil {
				return nil
			}
		}
	}
}

var suggestionsCmd = &cli.Command{
	Name:  "suggestions",
	Usage: "Show suggested accounts to follow",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "explore", Usage: "Use the explore suggestions instead"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			client := do.MustInvoke[*postapi.Client](i)

			get := client.GetSuggestions
			if c.Bool("explore") {
				get = client.GetExploreSuggestions
			}

			users, err := get(ctx)
			if err != nil {
				return err
			}
			return printUsers(out(c), users)
		})
	},
}

func printUsers(w io.Writer, users []core.User) error {
	for _, u := range users {
		name := u.Name
		if name == "" {
			name = u.Username
		}

		if _, err := fmt.Fprintf(w, "@%s (%s)\n", u.Username, name); err != nil {
			return err
		}
	}
	return nil
}
