package service

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/model"
)

// createContactRequest is the POST /api/contacts body. Month and day carry
// independent range checks only; there is intentionally no calendar
// cross-check between them.
type createContactRequest struct {
	Name          string  `json:"name" binding:"required"`
	BirthdayMonth int     `json:"birthdayMonth" binding:"required,min=1,max=12"`
	BirthdayDay   int     `json:"birthdayDay" binding:"required,min=1,max=31"`
	BirthdayYear  *int    `json:"birthdayYear" binding:"omitempty,min=1,max=9999"`
	Notes         *string `json:"notes"`
}

// updateContactRequest is the PUT /api/contacts/:id body. All fields are
// optional, but the handler rejects a body that sets none of them.
type updateContactRequest struct {
	Name          *string `json:"name" binding:"omitempty,min=1"`
	BirthdayMonth *int    `json:"birthdayMonth" binding:"omitempty,min=1,max=12"`
	BirthdayDay   *int    `json:"birthdayDay" binding:"omitempty,min=1,max=31"`
	BirthdayYear  *int    `json:"birthdayYear" binding:"omitempty,min=1,max=9999"`
	Notes         *string `json:"notes"`
}

func (r updateContactRequest) patch() model.ContactPatch {
	return model.ContactPatch{
		Name:          r.Name,
		BirthdayMonth: r.BirthdayMonth,
		BirthdayDay:   r.BirthdayDay,
		BirthdayYear:  r.BirthdayYear,
		Notes:         r.Notes,
	}
}

// fieldError is one entry of the errors list in a 400 response.
type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// badRequest translates a binding failure into the 400 response shape: a
// list of {field, message} pairs. Validator errors yield one entry per
// offending field; malformed JSON yields a single generic entry.
func badRequest(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fieldErrors := make([]fieldError, 0, len(verrs))
		for _, v := range verrs {
			fieldErrors = append(fieldErrors, fieldError{Field: v.Field(), Message: validationMessage(v)})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": fieldErrors})
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"errors": []fieldError{
		{Field: "body", Message: "request body must be valid JSON"},
	}})
}

func validationMessage(v validator.FieldError) string {
	switch v.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", v.Field())
	case "min":
		if v.Kind() == reflect.String {
			return fmt.Sprintf("%s must not be empty", v.Field())
		}
		return fmt.Sprintf("%s must be at least %s", v.Field(), v.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", v.Field(), v.Param())
	default:
		return fmt.Sprintf("%s is invalid", v.Field())
	}
}

// Report validation failures under the JSON field names the client sent,
// not the Go struct field names.
func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	}
}
