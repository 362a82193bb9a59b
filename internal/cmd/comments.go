package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"postify/internal/comments"
	"postify/internal/core"
	"postify/internal/session"
	"postify/pkg/postapi"

	"github.com/samber/do"
	"github.com/urfave/cli/v3"
)

var commentsCmd = &cli.Command{
	Name:      "comments",
	Usage:     "Show the comment thread of a post, optionally adding a comment",
	ArgsUsage: "<post-id>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "text", Usage: "Add a comment with this text"},
		&cli.StringFlag{Name: "reply-to", Usage: "Id of the comment to reply to"},
	},
	Action: func(ctx context.Context, c *cli.Command) error {
		return withPostID(ctx, c, func(ctx context.Context, i *do.Injector, id string) error {
			thread := comments.NewThread(id,
				do.MustInvoke[*postapi.Client](i),
				do.MustInvoke[*session.Session](i),
				do.MustInvoke[core.Notifier](i),
				do.MustInvoke[*slog.Logger](i),
			)

			if err := thread.Load(ctx); err != nil {
				return err
			}

			if text := c.String("text"); text != "" {
				parentID := c.String("reply-to")
				if parentID != "" {
					if _, ok := thread.Find(parentID); !ok {
						return fmt.Errorf("%w: comment %s", core.ErrNotFound, parentID)
					}
				}
				if _, err := thread.Reply(ctx, text, parentID); err != nil {
					return err
				}
			}

			return printComments(out(c), thread.Comments(), 0)
		})
	},
}

func printComments(w io.Writer, forest []core.Comment, depth int) error {
	indent := strings.Repeat("  ", depth)

	for _, comment := range forest {
		_, err := fmt.Fprintf(w, "%s[%s] @%s: %s\n", indent, comment.ID, comment.Author.Username, comment.ContentText)
		if err != nil {
			return err
		}
		if err := printComments(w, comment.Replies, depth+1); err != nil {
			return err
		}
	}
	return nil
}
