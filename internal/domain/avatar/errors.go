package avatar

import "errors"

var (
	ErrAvatarNotFound = errors.New("avatar not found")
	ErrImageRequired  = errors.New("image file is required")
	ErrInvalidImage   = errors.New("invalid image file")
)
