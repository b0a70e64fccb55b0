package util

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrCourseNotFound     = errors.New("course not found")
	ErrLessonNotFound     = errors.New("lesson not found")
	ErrQuizNotFound       = errors.New("lesson has no quiz")
	ErrAIUnavailable      = errors.New("generative AI request failed")
	ErrAIMalformedOutput  = errors.New("generative AI returned malformed content")
)
