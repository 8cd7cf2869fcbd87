package middleware

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"memoria/internal/domain"
)

type ErrorResponse struct {
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TraceID      string           `json:"trace_id,omitempty"`
	RevertedPost *domain.PostView `json:"reverted_post,omitempty"`
}

func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	errorCode := "INTERNAL_ERROR"
	traceID := uuid.New().String()[:8]

	var domainErr *domain.Error
	var fiberErr *fiber.Error

	resp := ErrorResponse{TraceID: traceID}

	switch {
	case errors.As(err, &domainErr):
		code = statusForKind(domainErr.Kind)
		errorCode = string(domainErr.Kind)
		message = domainErr.Message
		resp.RevertedPost = domainErr.Reverted
		if code == fiber.StatusInternalServerError {
			log.Printf("[http] %s %s trace=%s: %v", c.Method(), c.Path(), traceID, err)
		}
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message

		switch code {
		case fiber.StatusBadRequest:
			errorCode = "BAD_REQUEST"
		case fiber.StatusNotFound:
			errorCode = "NOT_FOUND"
		case fiber.StatusConflict:
			errorCode = "CONFLICT"
		case fiber.StatusRequestEntityTooLarge:
			errorCode = "PAYLOAD_TOO_LARGE"
		case fiber.StatusUnprocessableEntity:
			errorCode = "VALIDATION_ERROR"
		}
	default:
		log.Printf("[http] %s %s trace=%s: %v", c.Method(), c.Path(), traceID, err)
	}

	resp.Code = errorCode
	resp.Message = message
	return c.Status(code).JSON(resp)
}

func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return fiber.StatusUnprocessableEntity
	case domain.KindNotFound:
		return fiber.StatusNotFound
	case domain.KindConflict:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func BadRequest(message string) *fiber.Error {
	return fiber.NewError(fiber.StatusBadRequest, message)
}
