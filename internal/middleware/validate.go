package middleware

import (
	"errors"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/newsdigest/internal/logger"
)

// ValidatedKey is the Locals key holding the parsed request value
const ValidatedKey = "validated"

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// FieldErrors maps failed fields to the rule they broke
func FieldErrors(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}

// ValidateBody parses the JSON body into a fresh T per request, validates it and
// stores it under ValidatedKey. An empty body validates the zero value.
func ValidateBody[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v T
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&v); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "Invalid request body",
					"msg":   err.Error(),
				})
			}
		}

		if err := Validator().Struct(v); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": FieldErrors(err),
			})
		}

		c.Locals(ValidatedKey, v)
		return c.Next()
	}
}

// ValidateQuery parses query parameters into a fresh T and validates it
func ValidateQuery[T any]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var v T
		if err := c.QueryParser(&v); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid query parameters",
				"msg":   err.Error(),
			})
		}

		if err := Validator().Struct(v); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Invalid query parameters",
				"fields": FieldErrors(err),
			})
		}

		c.Locals(ValidatedKey, v)
		return c.Next()
	}
}

// Validated returns the value stored by ValidateBody or ValidateQuery
func Validated[T any](c *fiber.Ctx) (T, bool) {
	v, ok := c.Locals(ValidatedKey).(T)
	return v, ok
}

// ErrorHandler is a middleware that handles errors in a consistent way
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
