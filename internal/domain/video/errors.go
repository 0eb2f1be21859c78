package video

import "errors"

var (
	ErrMissingID     = errors.New("video id is required")
	ErrVideoNotFound = errors.New("video not found")
)
