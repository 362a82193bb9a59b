package comments

import (
	"slices"

	"postify/internal/core"
)

// Insert places c into forest and reports whether it was placed. A top-level comment is
// appended to the root list. A reply goes to the end of its parent's replies at any depth.
// A reply whose parent is missing is dropped. The input forest is never modified.
func Insert(forest []core.Comment, c core.Comment) ([]core.Comment, bool) {
	if c.ParentID == "" {
		return append(slices.Clone(forest), c), true
	}
	return insertReply(forest, c)
}

func insertReply(forest []core.Comment, c core.Comment) ([]core.Comment, bool) {
	for i, node := range forest {
		if node.ID == c.ParentID {
			node.Replies = append(slices.Clone(node.Replies), c)
			return replace(forest, i, node), true
		}

		if replies, ok := insertReply(node.Replies, c); ok {
			node.Replies = replies
			return replace(forest, i, node), true
		}
	}
	return forest, false
}

func replace(forest []core.Comment, i int, node core.Comment) []core.Comment {
	out := slices.Clone(forest)
	out[i] = node
	return out
}

// Find searches the forest depth-first for the comment with the given id.
func Find(forest []core.Comment, id string) (core.Comment, bool) {
	for _, node := range forest {
		if node.ID == id {
			return node, true
		}
		if found, ok := Find(node.Replies, id); ok {
			return found, true
		}
	}
	return core.Comment{}, false
}

// Count returns the number of comments in the forest, replies included.
func Count(forest []core.Comment) int {
	n := len(forest)
	for _, node := range forest {
		n += Count(node.Replies)
	}
	return n
}
