package federation

import "github.com/pkg/errors"

var (
	ErrModelNotFound    = errors.New("model not found")
	ErrElementNotFound  = errors.New("element not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrEmptyComment     = errors.New("comment text is empty")
	ErrHistoryMode      = errors.New("session is in history mode")
	ErrNothingToIsolate = errors.New("no comments found to isolate")
	ErrNoModelSelected  = errors.New("no model selected")
)
