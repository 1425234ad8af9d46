package service

import "github.com/GTDGit/bakery_api/internal/validation"

// invalid builds a single-field validation error.
func invalid(field, tag, message string) *validation.Error {
	return &validation.Error{Fields: []validation.FieldError{{Field: field, Tag: tag, Message: message}}}
}
