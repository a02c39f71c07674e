package handlers

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorBody is the structured shape used for validation and auth failures.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// SendError writes an ErrorBody with the standard reason phrase for status.
func SendError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ErrorBody{
		StatusCode: status,
		Error:      utils.StatusMessage(status),
		Message:    message,
	})
}

// bindJSON decodes the body into dst and runs struct validation, describing
// the first failure the way a schema validator would.
func bindJSON(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return errors.New("body must be object")
	}
	if err := c.BodyParser(dst); err != nil {
		return errors.New("body must be valid JSON")
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return errors.New(describeField(verrs[0]))
		}
		return err
	}
	return nil
}

func describeField(fe validator.FieldError) string {
	name := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return "body must have required property '" + name + "'"
	case "url":
		return "body/" + name + " must match format \"uri\""
	default:
		return "body/" + name + " must match format \"" + fe.Tag() + "\""
	}
}
