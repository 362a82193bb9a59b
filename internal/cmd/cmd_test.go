package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"postify/internal/core"
	"postify/internal/search"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for name, level := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := parseLevel(name)
			require.NoError(t, err)
			require.Equal(t, level, got)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := parseLevel("trace")
		require.ErrorIs(t, err, ErrInvalidLogLevel)
	})
}

func TestPrintPosts(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := printPosts(&buf, []core.Post{
		{ID: "p1", Title: "Hello", Author: core.Author{Username: "bob"}, LikesCount: 6, DislikesCount: 1, UserHasLiked: true},
		{ID: "p2", Title: "World", Author: core.Author{Username: "amy"}, CommentsCount: 2},
	})
	require.NoError(t, err)

	require.Equal(t,
		"+ [p1] Hello by @bob (likes 6, dislikes 1, comments 0)\n"+
			"  [p2] World by @amy (likes 0, dislikes 0, comments 2)\n",
		buf.String())
}

func TestPrintComments(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := printComments(&buf, []core.Comment{
		{ID: "a", ContentText: "root", Author: core.Author{Username: "bob"}, Replies: []core.Comment{
			{ID: "b", ContentText: "reply", Author: core.Author{Username: "amy"}, ParentID: "a"},
		}},
	}, 0)
	require.NoError(t, err)

	require.Equal(t, "[a] @bob: root\n  [b] @amy: reply\n", buf.String())
}

type fakeSearch struct {
	mu      sync.Mutex
	queries []string
}

func (f *fakeSearch) SearchUsers(_ context.Context, query string) ([]core.User, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	return []core.User{{Username: query}}, nil
}

func TestSearchAsYouType(t *testing.T) {
	t.Parallel()

	api := &fakeSearch{}
	results := make(chan []core.User, 1)

	d := search.NewDebouncer(api, 20*time.Millisecond, func(query string, users []core.User) {
		if query != "" {
			results <- users
		}
	}, nil, slog.Default())

	var buf bytes.Buffer
	err := searchAsYouType(t.Context(), strings.NewReader("b\nbo\nbob\n"), &buf, d, results, time.Second)
	require.NoError(t, err)

	require.Equal(t, "@bob (bob)\n", buf.String())

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Equal(t, []string{"bob"}, api.queries)
}

func TestFeedCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path != "/posts" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		switch r.URL.Query().Get("page") {
		case "1":
			_, _ = w.Write([]byte(`{"posts":[{"id":"p1","title":"First","author":{"username":"bob"},"likes_count":"5"}],` +
				`"pagination":{"page":1,"hasNextPage":true}}`))
		case "2":
			_, _ = w.Write([]byte(`{"posts":[{"id":"p2","title":"Second","author":{"username":"amy"}}],` +
				`"pagination":{"page":2,"hasNextPage":false}}`))
		default:
			_, _ = w.Write([]byte(`{"posts":[],"pagination":{"hasNextPage":false}}`))
		}
	}))
	defer srv.Close()

	var buf bytes.Buffer
	cmd.Writer = &buf

	err := cmd.Run(t.Context(), []string{"postify", "--api-url", srv.URL, "--log-level", "error", "feed", "--pages", "3"})
	require.NoError(t, err)

	require.Equal(t,
		"  [p1] First by @bob (likes 5, dislikes 0, comments 0)\n"+
			"  [p2] Second by @amy (likes 0, dislikes 0, comments 0)\n",
		buf.String())
}
