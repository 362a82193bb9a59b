package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"postify/internal/core"
	"postify/internal/feed"
	"postify/internal/session"
	"postify/pkg/postapi"

	"github.com/samber/do"
	"github.com/urfave/cli/v3"
)

var errMissingPostID = errors.New("post id is required")

var feedCmd = &cli.Command{
	Name:  "feed",
	Usage: "Show the feed, personalized when logged in",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "pages", Usage: "Number of pages to load", Value: 1},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
			store := do.MustInvoke[*feed.Store](i)
			identity := do.MustInvoke[*session.Session](i).Identity()

			if err := store.Initialize(ctx, identity); err != nil {
				return err
			}
			for page := 1; page < int(c.Int("pages")); page++ {
				if !store.Cursor().HasNextPage {
					break
				}
				if err := store.LoadMore(ctx); err != nil {
					return err
				}
			}

			return printPosts(out(c), store.Posts())
		})
	},
}

func postFormFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Post title"},
		&cli.StringFlag{Name: "text", Usage: "Post body"},
		&cli.StringFlag{Name: "media", Usage: "Path to an image or video to attach"},
		&cli.StringFlag{Name: "category", Usage: "Category id"},
	}
}

var postCmd = &cli.Command{
	Name:  "post",
	Usage: "Create, edit, delete and react to posts",
	Commands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Publish a new post",
			Flags: postFormFlags(),
			Action: func(ctx context.Context, c *cli.Command) error {
				return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
					form, err := postForm(c)
					if err != nil {
						return err
					}

					post, err := do.MustInvoke[*feed.Store](i).CreatePost(ctx, form)
					if err != nil {
						return err
					}
					return printPosts(out(c), []core.Post{post})
				})
			},
		},
		{
			Name:      "edit",
			Usage:     "Edit one of your posts",
			ArgsUsage: "<post-id>",
			Flags:     postFormFlags(),
			Action: func(ctx context.Context, c *cli.Command) error {
				return withPostID(ctx, c, func(ctx context.Context, i *do.Injector, id string) error {
					form, err := postForm(c)
					if err != nil {
						return err
					}

					post, err := do.MustInvoke[*feed.Store](i).EditPost(ctx, id, form)
					if err != nil {
						return err
					}
					return printPosts(out(c), []core.Post{post})
				})
			},
		},
		{
			Name:      "delete",
			Usage:     "Delete one of your posts",
			ArgsUsage: "<post-id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return withPostID(ctx, c, func(ctx context.Context, i *do.Injector, id string) error {
					return do.MustInvoke[*feed.Store](i).DeletePost(ctx, id)
				})
			},
		},
		{
			Name:      "like",
			Usage:     "Toggle your like on a post from the feed",
			ArgsUsage: "<post-id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return withFeedPost(ctx, c, (*feed.Store).ToggleLike)
			},
		},
		{
			Name:      "dislike",
			Usage:     "Toggle your dislike on a post from the feed",
			ArgsUsage: "<post-id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return withFeedPost(ctx, c, (*feed.Store).ToggleDislike)
			},
		},
		{
			Name:      "likers",
			Usage:     "List the users who liked a post",
			ArgsUsage: "<post-id>",
			Action: func(ctx context.Context, c *cli.Command) error {
				return withPostID(ctx, c, func(ctx context.Context, i *do.Injector, id string) error {
					users, err := do.MustInvoke[*postapi.Client](i).GetLikers(ctx, id)
					if err != nil {
						return err
					}
					return printUsers(out(c), users)
				})
			},
		},
		{
			Name:  "categories",
			Usage: "List the categories a post can be filed under",
			Action: func(ctx context.Context, c *cli.Command) error {
				return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
					categories, err := do.MustInvoke[*postapi.Client](i).GetCategories(ctx)
					if err != nil {
						return err
					}

					w := out(c)
					for _, category := range categories {
						if _, err := fmt.Fprintf(w, "[%s] %s\n", category.ID, category.Name); err != nil {
							return err
						}
					}
					return nil
				})
			},
		},
	},
}

func withPostID(ctx context.Context, c *cli.Command, action func(ctx context.Context, i *do.Injector, id string) error) error {
	id := c.Args().First()
	if id == "" {
		return errMissingPostID
	}

	return run(ctx, c, func(ctx context.Context, i *do.Injector) error {
		return action(ctx, i, id)
	})
}

// withFeedPost loads the first feed page so the toggle applies to the held copy, then prints it.
func withFeedPost(ctx context.Context, c *cli.Command, toggle func(*feed.Store, context.Context, string) error) error {
	return withPostID(ctx, c, func(ctx context.Context, i *do.Injector, id string) error {
		store := do.MustInvoke[*feed.Store](i)
		if err := store.Initialize(ctx, do.MustInvoke[*session.Session](i).Identity()); err != nil {
			return err
		}
		if _, ok := store.Post(id); !ok {
			return fmt.Errorf("%w: post %s is not on the first feed page", core.ErrNotFound, id)
		}

		if err := toggle(store, ctx, id); err != nil {
			return err
		}

		post, _ := store.Post(id)
		return printPosts(out(c), []core.Post{post})
	})
}

func postForm(c *cli.Command) (core.PostForm, error) {
	form := core.PostForm{
		Title:       c.String("title"),
		ContentText: c.String("text"),
		CategoryID:  c.String("category"),
	}

	if path := c.String("media"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return core.PostForm{}, err
		}
		form.ImageURL, err = feed.EncodeMedia(data)
		if err != nil {
			return core.PostForm{}, err
		}
	}

	return form, nil
}

func printPosts(w io.Writer, posts []core.Post) error {
	for _, p := range posts {
		mark := " "
		switch {
		case p.UserHasLiked:
			mark = "+"
		case p.UserHasDisliked:
			mark = "-"
		}

		_, err := fmt.Fprintf(w, "%s [%s] %s by @%s (likes %d, dislikes %d, comments %d)\n",
			mark, p.ID, p.Title, p.Author.Username, p.LikesCount, p.DislikesCount, p.CommentsCount)
		if err != nil {
			return err
		}
	}
	return nil
}
