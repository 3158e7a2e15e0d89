package api

import apperrors "github.com/kbukum/huddle/errors"

func invalidBody(err error) error {
	return apperrors.InvalidInput("body", "request body must be valid JSON").WithCause(err)
}
