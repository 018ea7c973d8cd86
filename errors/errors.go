package errors

import (
	Errors "errors"
	"log"

	"peerchat/global"
	"peerchat/schemas"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Kind classifies an error into the client-facing taxonomy
type Kind int

const (
	// Validation for malformed input detected before any remote call
	Validation Kind = iota
	// NotFound for unknown handles or codes
	NotFound
	// Conflict for self-targeting, duplicate requests and already-friends
	Conflict
	// Store for any backend call failure
	Store
	// Upload for blob storage failures
	Upload
)

// Error carries a kind plus the problem/description pair used in responses
type Error struct {
	Kind        Kind
	Problem     string
	Description string
}

func (e *Error) Error() string {
	return "Problem: " + e.Problem + "; Description: " + e.Description
}

// New builds a classified error
func New(kind Kind, problem string, description string) error {
	return &Error{Kind: kind, Problem: problem, Description: description}
}

// KindOf extracts the kind of a classified error, Store for anything else
func KindOf(err error) Kind {
	var classified *Error
	if Errors.As(err, &classified) {
		return classified.Kind
	}
	return Store
}

// Is reports whether err is classified with the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HandleFatalError handles global error
func HandleFatalError(err error) {
	if err != nil {
		log.Fatalln(err)
	}
}

// HandleBasicError handles basic error and logs
func HandleBasicError(err error) bool {
	if err != nil {
		global.InternalLogger.Println(err)
		return true
	}
	return false
}

// HandleComplexError handles complex errors and logs
func HandleComplexError(problem string, err string) error {
	global.MonitorLogger.Println("Complex error; Problem: " + problem + "; Error: " + err)
	return New(Store, problem, err)
}

// HandleInternalError handles internal errors (things that should never happen in normal circumstances)
func HandleInternalError(c *fiber.Ctx, problem string, err string) error {
	global.InternalLogger.Println("IP: " + c.IP() + "; Problem: " + problem + "; Error: " + err)
	return c.Status(fiber.StatusInternalServerError).JSON(schemas.ErrorResponse{
		Error: true,
	})
}

// HandleBadRequestError handles bad request errors (client error that is harmless to server and state)
func HandleBadRequestError(c *fiber.Ctx, problem string, description string) error {
	global.MonitorLogger.Println("Bad Request; Problem: " + problem + "; Description: " + description)
	return c.Status(fiber.StatusBadRequest).JSON(schemas.ErrorResponse{
		Error:       true,
		Problem:     problem,
		Description: description,
	})
}

// HandleInvalidRequestError handles invalid request errors (expected errors)
func HandleInvalidRequestError(c *fiber.Ctx, problem string, description string) error {
	return c.Status(fiber.StatusAccepted).JSON(schemas.ErrorResponse{
		Error:       true,
		Problem:     problem,
		Description: description,
	})
}

// HandleUnauthorizedError handles failed authentication
func HandleUnauthorizedError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(schemas.ErrorResponse{
		Error:   true,
		Problem: "Authorization",
	})
}

// HandleClassifiedError maps a classified error onto the matching response
func HandleClassifiedError(c *fiber.Ctx, err error) error {
	var classified *Error
	if !Errors.As(err, &classified) {
		return HandleInternalError(c, "unclassified", err.Error())
	}
	switch classified.Kind {
	case Validation:
		return HandleBadRequestError(c, classified.Problem, classified.Description)
	case NotFound, Conflict:
		return HandleInvalidRequestError(c, classified.Problem, classified.Description)
	default:
		return HandleInternalError(c, classified.Problem, classified.Description)
	}
}

// HandleWebsocketError logs websocket errors against the connection
func HandleWebsocketError(ws *websocket.Conn, problem string, err string) {
	global.InternalLogger.Println("Websocket: " + ws.RemoteAddr().String() + "; Problem: " + problem + "; Error: " + err)
}

// HandleValidatorError handles errors when validating request
func HandleValidatorError(c *fiber.Ctx, err error) error {
	validatorErr := err.(validator.ValidationErrors)[0]
	return HandleBadRequestError(c, validatorErr.StructField(), validatorErr.Tag())
}

// HandleBadJsonError handles json request parser errors
func HandleBadJsonError(c *fiber.Ctx) error {
	return HandleBadRequestError(c, "JSON body", "invalid")
}
