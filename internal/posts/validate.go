package posts

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleLen matches MaxSlugLen so a maximal title can still slug.
	MaxTitleLen = 86

	MaxDescriptionLen = 256
)

var (
	ErrTitleRequired   = errors.New("title can not be blank")
	ErrTitleWhitespace = errors.New("title can not start or end with whitespace")
	ErrTitleTooLong    = fmt.Errorf("title must be at most %d characters", MaxTitleLen)

	ErrDescriptionRequired = errors.New("description can not be blank")
	ErrDescriptionTooLong  = fmt.Errorf("description must be at most %d characters", MaxDescriptionLen)
)

// ValidateTitle checks the title rules: 1–86 characters, no leading or
// trailing whitespace.
func ValidateTitle(title string) error {
	if title == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(title) != title {
		return ErrTitleWhitespace
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	return nil
}

// ValidateDescription checks the description rules: 1–256 characters.
func ValidateDescription(desc string) error {
	if desc == "" {
		return ErrDescriptionRequired
	}
	if utf8.RuneCountInString(desc) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}
