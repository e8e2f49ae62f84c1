package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/forPelevin/gomoji"
	"github.com/go-playground/validator/v10"
	"github.com/rivo/uniseg"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("qroom_emoji", func(fl validator.FieldLevel) bool {
			return ValidateEmoji(fl.Field().String())
		})
		_ = v.RegisterValidation("qroom_capacity", func(fl validator.FieldLevel) bool {
			return ValidateCapacity(int(fl.Field().Int()))
		})
		_ = v.RegisterValidation("qroom_status", func(fl validator.FieldLevel) bool {
			return RoomStatus(fl.Field().Int()).Valid()
		})
		validate = v
	})
	return validate
}

// ValidateCapacity accepts -1 or a value in (0, MaxCapacity].
func ValidateCapacity(capacity int) bool {
	return capacity == UnboundedCapacity || (capacity > 0 && capacity <= MaxCapacity)
}

// ValidateEmoji accepts a string made of exactly one emoji grapheme cluster.
func ValidateEmoji(s string) bool {
	if uniseg.GraphemeClusterCount(s) != 1 {
		return false
	}
	return gomoji.ContainsEmoji(s) && gomoji.RemoveEmojis(s) == ""
}

// ValidationError describes the first offending field of a document.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ValidateRoom re-runs field validation on a room.
func ValidateRoom(r *QueueRoom) error {
	return validateStruct(r)
}

// ValidateEntry validates an entry, including the identity invariant.
func ValidateEntry(e *QueueEntry) error {
	if err := validateStruct(e); err != nil {
		return err
	}
	hasUser := e.GuestUserID != nil && *e.GuestUserID != ""
	hasEmail := e.GuestEmail != nil && *e.GuestEmail != ""
	switch {
	case !hasUser && !hasEmail:
		return &ValidationError{Field: "email", Message: "An email is required to join the queue while logged out."}
	case hasUser && hasEmail:
		return &ValidationError{Field: "email", Message: "An entry cannot belong to both a user and a guest email."}
	}
	return nil
}

// ValidateUser validates a user document.
func ValidateUser(u *User) error {
	return validateStruct(u)
}

func validateStruct(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Field %q is required.", field)
	case "max":
		return fmt.Sprintf("Field %q must not be longer than %s characters.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("Field %q must be one of [%s].", field, fe.Param())
	case "email":
		return fmt.Sprintf("%q is not a valid email address.", fe.Value())
	case "qroom_emoji":
		return "Emoji must be a single emoji character."
	case "qroom_capacity":
		return fmt.Sprintf("Capacity must be -1 or between 1 and %d.", MaxCapacity)
	case "qroom_status":
		return fmt.Sprintf("Invalid queue room status (%v).", fe.Value())
	}
	return fmt.Sprintf("Field %q is invalid.", field)
}
