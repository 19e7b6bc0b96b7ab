package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"meetmatch/internal/services"
	applog "meetmatch/pkg/log"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// requestError is a malformed request rejected before reaching a service.
type requestError struct {
	code    string
	details string
	fields  map[string]string
}

func (e *requestError) Error() string {
	return e.details
}

func badRequest(code, details string) error {
	return &requestError{code: code, details: details}
}

// validateStruct runs the validator tags of req and reports failing fields.
func validateStruct(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badRequest("invalid_request", err.Error())
	}
	code := "missing_fields"
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fmt.Sprintf("failed on the '%s' tag", e.Tag())
		if e.Tag() != "required" {
			code = "invalid_fields"
		}
	}
	return &requestError{code: code, details: "validation failed", fields: fields}
}

func statusOf(kind services.Kind) int {
	switch kind {
	case services.KindValidation:
		return fiber.StatusBadRequest
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindConflict:
		return fiber.StatusConflict
	case services.KindForbidden:
		return fiber.StatusForbidden
	case services.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case services.KindTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler converts errors returned by handlers and middleware into
// JSON error bodies. Internal failure text is only included when
// exposeInternal is set.
func ErrorHandler(exposeInternal bool) fiber.ErrorHandler {
	logger := applog.WithComponent("http")

	return func(c *fiber.Ctx, err error) error {
		var (
			reqErr   *requestError
			svcErr   *services.Error
			fiberErr *fiber.Error
		)

		switch {
		case errors.As(err, &reqErr):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Error:   reqErr.code,
				Details: reqErr.details,
				Fields:  reqErr.fields,
			})

		case errors.As(err, &svcErr):
			status := statusOf(services.KindOf(err))
			body := ErrorResponse{Error: svcErr.Code, Details: svcErr.Message}
			if status >= fiber.StatusInternalServerError {
				logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Request failed")
				if exposeInternal {
					body.Details = err.Error()
				}
			}
			return c.Status(status).JSON(body)

		case errors.As(err, &fiberErr):
			if fiberErr.Code == fiber.StatusRequestTimeout {
				return c.Status(fiber.StatusGatewayTimeout).JSON(ErrorResponse{Error: "timeout", Details: "request timed out"})
			}
			return c.Status(fiberErr.Code).JSON(ErrorResponse{Error: codeForStatus(fiberErr.Code), Details: fiberErr.Message})
		}

		logger.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("Unhandled error")
		body := ErrorResponse{Error: "internal_error", Details: "internal server error"}
		if exposeInternal {
			body.Details = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "invalid_request"
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "payload_too_large"
	case fiber.StatusUnsupportedMediaType:
		return "unsupported_media_type"
	}
	if status >= fiber.StatusInternalServerError {
		return "internal_error"
	}
	return "request_failed"
}
