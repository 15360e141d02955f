package handlers

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/charlesng35/resourcedesk/internal/models"
	appErrors "github.com/charlesng35/resourcedesk/pkg/errors"
	"github.com/charlesng35/resourcedesk/pkg/response"
	appValidator "github.com/charlesng35/resourcedesk/pkg/validator"
)

func init() {
	_ = appValidator.RegisterValidation("request_type", enumValidator(func(v string) bool {
		_, ok := models.ParseRequestType(v)
		return ok
	}))
	_ = appValidator.RegisterValidation("priority", enumValidator(func(v string) bool {
		_, ok := models.ParsePriority(v)
		return ok
	}))
}

// enumValidator accepts empty strings so optional fields can be combined with omitempty or required.
func enumValidator(parse func(string) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				return true
			}
			field = field.Elem()
		}
		if field.Kind() != reflect.String {
			return false
		}
		value := field.String()
		return strings.TrimSpace(value) == "" || parse(value)
	}
}

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// When validation fails, an error response is automatically written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewValidation(formatValidationError(err)))
		return false
	}

	return true
}

// bindOptionalJSON behaves like bindAndValidate but treats an empty body as
// the zero payload. The body length is not consulted because chunked
// requests report an unknown length.
func bindOptionalJSON[T any](c *gin.Context, dest *T) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		if !errors.Is(err, io.EOF) {
			response.Error(c, appErrors.NewBadRequest("invalid JSON payload"))
			return false
		}
		var zero T
		*dest = zero
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, appErrors.NewValidation(formatValidationError(err)))
		return false
	}

	return true
}

func formatValidationError(err error) string {
	if err == nil {
		return "invalid request payload"
	}

	if ve, ok := err.(appValidator.ValidationErrors); ok {
		if len(ve) == 0 {
			return "invalid request payload"
		}

		messages := make([]string, 0, len(ve))
		for _, failure := range ve {
			field := prettifyFieldName(failure.Field)
			switch failure.Tag {
			case "required", "notblank":
				messages = append(messages, fmt.Sprintf("%s is required", field))
			case "max":
				messages = append(messages, fmt.Sprintf("%s must be at most %s characters", field, failure.Param))
			case "request_type":
				messages = append(messages, fmt.Sprintf("%s must be one of %s", field, joinEnum(models.RequestTypes())))
			case "priority":
				messages = append(messages, fmt.Sprintf("%s must be one of Low, Medium, High", field))
			default:
				if failure.Param != "" {
					messages = append(messages, fmt.Sprintf("%s failed validation: %s=%s", field, failure.Tag, failure.Param))
				} else {
					messages = append(messages, fmt.Sprintf("%s failed validation: %s", field, failure.Tag))
				}
			}
		}
		return strings.Join(messages, "; ")
	}

	return "invalid request payload"
}

func joinEnum[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func prettifyFieldName(name string) string {
	if name == "" {
		return "field"
	}
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ToLower(name)
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

// parseDateQuery accepts RFC3339 timestamps or plain YYYY-MM-DD dates.
// endOfDay moves plain dates to the last instant of that day.
func parseDateQuery(c *gin.Context, key string, endOfDay bool) (*time.Time, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, appErrors.NewValidation(fmt.Sprintf("%s must be a date (YYYY-MM-DD) or RFC3339 timestamp", key))
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
