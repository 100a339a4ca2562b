package errors

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// HandleError translates a CoreError into the common HTTP envelope. Errors
// that don't carry a Kind fall back to a generic 500.
func HandleError(c *fiber.Ctx, err error) error {
	if err == nil {
		return nil
	}

	ce, ok := As(err)
	if !ok {
		log.Printf("unexpected error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"error":   "internal_error",
			"message": "internal server error",
		})
	}

	if ce.Err != nil {
		log.Printf("core error [%s]: %s: %v", ce.Kind, ce.Message, ce.Err)
	}

	status := statusForKind(ce.Kind)

	body := fiber.Map{
		"success": false,
		"error":   string(ce.Kind),
		"message": ce.Message,
	}
	if ce.Field != "" {
		body["errors"] = []fiber.Map{{"field": ce.Field, "message": ce.Message}}
	}

	return c.Status(status).JSON(body)
}

func statusForKind(k Kind) int {
	switch k {
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation, KindChecksumMismatch:
		return fiber.StatusUnprocessableEntity
	case KindStateConflict:
		return fiber.StatusConflict
	case KindTransient, KindStorageError, KindFatal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}
