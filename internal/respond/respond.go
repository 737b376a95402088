// Package respond carries the (status code, message, data) triple returned by
// the core services and renders it as the API's JSON envelope.
package respond

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/walletsvc/wallet_service/internal/apperr"
)

// Result is what every core operation hands back to the transport layer.
type Result[T any] struct {
	Code    int
	Message string
	Data    T
}

// Succeeded reports whether the result carries a 2xx code.
func (r Result[T]) Succeeded() bool {
	return r.Code >= 200 && r.Code < 300
}

// OK builds a 200 result.
func OK[T any](data T, message string) Result[T] {
	return Result[T]{Code: http.StatusOK, Message: message, Data: data}
}

// Created builds a 201 result.
func Created[T any](data T, message string) Result[T] {
	return Result[T]{Code: http.StatusCreated, Message: message, Data: data}
}

// Fail converts err into a result. Unclassified and internal errors are reported
// with fallback so that no store or crypto detail leaks to clients.
func Fail[T any](err error, fallback string) Result[T] {
	return Result[T]{Code: apperr.StatusOf(err), Message: apperr.MessageOf(err, fallback)}
}

// Envelope is the JSON body written for every API response.
type Envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Render writes r verbatim: its code becomes the response status.
func Render[T any](c *fiber.Ctx, r Result[T]) error {
	env := Envelope{Code: r.Code, Message: r.Message}
	if r.Succeeded() {
		env.Data = r.Data
	}
	return c.Status(r.Code).JSON(env)
}

// Error writes err using the envelope. Used for transport level failures that
// never reach a service.
func Error(c *fiber.Ctx, err error, fallback string) error {
	return Render(c, Fail[struct{}](err, fallback))
}

// ErrorHandler renders errors returned from fiber handlers and middleware
// with the envelope. Only *fiber.Error messages reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(Envelope{Code: fe.Code, Message: fe.Message})
	}
	return c.Status(http.StatusInternalServerError).JSON(Envelope{
		Code:    http.StatusInternalServerError,
		Message: http.StatusText(http.StatusInternalServerError),
	})
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Bind parses the request body into dst and validates its struct tags.
func Bind(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperr.Wrap(apperr.InvalidInput, "Invalid request body", err)
	}
	return Validate(dst)
}

// Validate checks dst against its `validate` struct tags.
func Validate(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.InvalidInput, "Invalid request body", err)
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return apperr.Invalid(fmt.Sprintf("%s is required", fe.Field()))
	case "min":
		return apperr.Invalid(fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param()))
	default:
		return apperr.Invalid(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
