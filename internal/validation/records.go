// Package validation checks records before they are written.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"recipebox/internal/models"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	MaxUsernameLen = 30
	MaxEmailLen    = 254
	MaxTitleLen    = 200
	MaxCommentLen  = 10000
	MaxTags        = 20
	MaxTagLen      = 64
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$`)
	// Deliverability is not checked; one @ with something on both sides is enough.
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)
)

func notBlank(value interface{}) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank")
	}
	return nil
}

// itemCount counts slice entries. JSON-backed slices must not reach
// Required or Length, which measure their encoded form.
func itemCount(value interface{}) int {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return v.Len()
	}
	return 0
}

func minItems(n int, msg string) validation.Rule {
	return validation.By(func(value interface{}) error {
		if itemCount(value) < n {
			return errors.New(msg)
		}
		return nil
	})
}

func maxItems(n int) validation.Rule {
	return validation.By(func(value interface{}) error {
		if itemCount(value) > n {
			return fmt.Errorf("no more than %d entries allowed", n)
		}
		return nil
	})
}

// User validates a user record.
func User(u *models.User) error {
	return toAppError(validation.ValidateStruct(u,
		validation.Field(&u.Username,
			validation.Required.Error("username is required"),
			validation.RuneLength(3, MaxUsernameLen),
			validation.Match(usernameRegex).Error("username can only contain letters, numbers, underscores, and hyphens and cannot start or end with a symbol"),
		),
		validation.Field(&u.Email,
			validation.Required.Error("email is required"),
			validation.Length(3, MaxEmailLen),
			validation.Match(emailRegex).Error("invalid email format"),
		),
		validation.Field(&u.ProfileImage, validation.Length(0, 512)),
	))
}

// Recipe validates a recipe record. Ingredients and steps each need at least
// one entry and no entry may be blank.
func Recipe(r *models.Recipe) error {
	return toAppError(validation.ValidateStruct(r,
		validation.Field(&r.Title,
			validation.By(notBlank),
			validation.RuneLength(1, MaxTitleLen),
		),
		validation.Field(&r.Ingredients,
			minItems(1, "at least one ingredient is required"),
			validation.Each(validation.By(notBlank)),
		),
		validation.Field(&r.Steps,
			minItems(1, "at least one step is required"),
			validation.Each(validation.By(notBlank)),
		),
		validation.Field(&r.Tags,
			maxItems(MaxTags),
			validation.Each(validation.By(notBlank), validation.RuneLength(1, MaxTagLen)),
		),
		validation.Field(&r.Author, validation.By(func(value interface{}) error {
			a, _ := value.(models.AuthorSnapshot)
			if strings.TrimSpace(a.AuthorID) == "" {
				return errors.New("author id is required")
			}
			return nil
		})),
	))
}

// Comment validates a comment before it is appended to a recipe.
func Comment(c *models.Comment) error {
	return toAppError(validation.ValidateStruct(c,
		validation.Field(&c.UserID, validation.Required.Error("user id is required")),
		validation.Field(&c.Username, validation.By(notBlank)),
		validation.Field(&c.Text,
			validation.By(notBlank),
			validation.RuneLength(1, MaxCommentLen).Error("comment too long (max 10000 characters)"),
		),
	))
}

// toAppError turns ozzo's field map into a validation AppError naming the
// first offending field.
func toAppError(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		var internal validation.InternalError
		if errors.As(err, &internal) {
			return models.NewInternalError(err)
		}
		return models.NewValidationError(err.Error())
	}
	keys := make([]string, 0, len(fieldErrs))
	for k := range fieldErrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	field := keys[0]
	return models.NewFieldValidationError(field, field+": "+fieldErrs[field].Error())
}
