package project

import "errors"

var (
	// ErrGroupNotFound is returned when no group has the given name.
	ErrGroupNotFound = errors.New("group not found")

	// ErrCategoryNotFound is returned when no category has the given name.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrRuleNotFound is returned when no rule has the given id.
	ErrRuleNotFound = errors.New("rule not found")

	// ErrNoWorkingImage is returned for drawing operations before a working
	// image is set.
	ErrNoWorkingImage = errors.New("no working image")

	// ErrDuplicateName is returned when a rename or add would collide with
	// an existing name.
	ErrDuplicateName = errors.New("name already in use")

	// ErrInvalidAttributeName is returned for attribute names that cannot
	// be written as an XML attribute.
	ErrInvalidAttributeName = errors.New("invalid attribute name")
)
