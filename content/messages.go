package content

import "errors"

// Fallback texts shown in place of content that could not be loaded.
const (
	MsgListUnavailable = "Could not load the post list. Please try again later."
	MsgNoPosts         = "No posts found."
	MsgMissingFile     = "No post was specified."
	MsgInvalidFile     = "That is not a valid post address."
	MsgNotFound        = "This post does not exist."
	MsgUnavailable     = "Could not load this post. Please try again later."
	UntitledTitle      = "Untitled"
)

// Message maps a Document error to its fallback text.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrMissingFile):
		return MsgMissingFile
	case errors.Is(err, ErrInvalidFile):
		return MsgInvalidFile
	case errors.Is(err, ErrNotFound):
		return MsgNotFound
	}
	return MsgUnavailable
}
