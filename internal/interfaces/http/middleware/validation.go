package middleware

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/scholarly/backcontent/internal/domain/journal"
	"github.com/scholarly/backcontent/internal/domain/submission"
	"github.com/scholarly/backcontent/internal/interfaces/http/dto"
)

// customTags are the binding tags backed by domain rules
var customTags = map[string]validator.Func{
	"doiprefix": func(fl validator.FieldLevel) bool {
		return journal.IsDOIPrefix(strings.TrimSpace(fl.Field().String()))
	},
	// doi accepts resolver URLs and "doi:" forms, the same inputs the importer normalizes
	"doi": func(fl validator.FieldLevel) bool {
		return submission.ValidateDOI(submission.NormalizeDOI(fl.Field().String())) == nil
	},
}

// SetupValidator registers the domain tags on gin's validator and makes
// errors name fields by their json (or form) key.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	for tag, fn := range customTags {
		_ = v.RegisterValidation(tag, fn)
	}
	v.RegisterTagNameFunc(fieldName)
}

func fieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		name, _, _ = strings.Cut(fld.Tag.Get("form"), ",")
	}
	return name
}

// FormatValidationErrors turns binding errors into the validation envelope
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			details = append(details, dto.ValidationDetail{
				Field:   fe.Field(),
				Message: validationMessage(fe),
			})
		}
	}
	return dto.NewValidationErrorResponse("Request validation failed", requestID, details)
}

// HandleValidationError answers 400 with the field errors in err
func HandleValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

var fixedMessages = map[string]string{
	"required":  "This field is required",
	"email":     "Invalid email format",
	"uuid":      "Invalid UUID format",
	"url":       "Invalid URL format",
	"doiprefix": "Must be a DOI prefix such as 10.1234",
	"doi":       "Must be a DOI such as 10.1234/abc.1",
}

func validationMessage(fe validator.FieldError) string {
	if msg, ok := fixedMessages[fe.Tag()]; ok {
		return msg
	}
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "min":
		return "Must be at least " + fe.Param() + unit
	case "max":
		return "Must be at most " + fe.Param() + unit
	case "len":
		return "Must be exactly " + fe.Param() + unit
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "lte":
		return "Must be less than or equal to " + fe.Param()
	case "oneof":
		return "Must be one of: " + fe.Param()
	}
	return "Invalid value"
}
