package handlers

import (
	"errors"
	"fmt"
	"log"

	"mandale/internal/errs"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// validationError carries per-field messages from the validator.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string { return "Validation failed" }

func statusFor(kind errs.Kind) int {
	switch kind {
	case errs.KindInvalidArgument:
		return fiber.StatusBadRequest
	case errs.KindUnauthorized:
		return fiber.StatusUnauthorized
	case errs.KindForbidden:
		return fiber.StatusForbidden
	case errs.KindNotFound:
		return fiber.StatusNotFound
	case errs.KindConflict:
		return fiber.StatusConflict
	case errs.KindPaymentRejected:
		return fiber.StatusPaymentRequired
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err in the API envelope. Only unexpected errors are
// logged.
func respondError(c *fiber.Ctx, err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": ve.Error(),
			"errors":  ve.fields,
		})
	}

	kind := errs.KindOf(err)
	if kind == errs.KindInternal {
		log.Printf("Unexpected error on %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(statusFor(kind)).JSON(fiber.Map{
		"message": errs.Message(err),
	})
}

// bindRequest parses the JSON body into dst and validates it.
func bindRequest(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		log.Printf("Error parsing request body on %s: %v", c.Path(), err)
		return errs.InvalidArgument("Invalid request body")
	}
	return validateStruct(validate, dst)
}

func validateStruct(validate *validator.Validate, v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errs.InvalidArgument("Invalid request body")
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return &validationError{fields: errorMessages}
}

// currentUserID returns the id stored by the auth middleware.
func currentUserID(c *fiber.Ctx) string {
	userID, _ := c.Locals("user_id").(string)
	return userID
}
