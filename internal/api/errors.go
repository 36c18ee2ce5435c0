package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shelfmark/internal/service"
)

// APIError is the wire form of a catalog error.
type APIError struct {
	Name    string `json:"name"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Fixed error catalog. Names and messages are stable: clients key on them.
var (
	// validation (1xxx)
	ErrRequiredField = APIError{Name: "REQUIRED_FIELD", Code: 1001, Message: "There are required field that are empty"}
	ErrInvalidID     = APIError{Name: "INVALID_ID", Code: 1002, Message: "This id format is invalid"}

	// identity (2xxx)
	ErrInvalidEmail          = APIError{Name: "INVALID_EMAIL", Code: 2001, Message: "No account is registered with this email"}
	ErrInvalidPassword       = APIError{Name: "INVALID_PASSWORD", Code: 2002, Message: "This password is invalid"}
	ErrUserNotConfirmed      = APIError{Name: "USER_NOT_CONFIRMED", Code: 2003, Message: "User account is not confirmed"}
	ErrUsernameAlreadyExists = APIError{Name: "USERNAME_ALREADY_EXISTS", Code: 2004, Message: "This username is already taken"}
	ErrEmailAlreadyExists    = APIError{Name: "EMAIL_ALREADY_EXISTS", Code: 2005, Message: "This email is already registered"}

	// authorization (3xxx)
	ErrUnauthorized = APIError{Name: "UNAUTHORIZED", Code: 3001, Message: "You need to be logged to perform this action"}
	ErrForbidden    = APIError{Name: "FORBIDDEN", Code: 3002, Message: "You are not authorized to perform this action"}

	// resources (4xxx)
	ErrRessourceNotFound       = APIError{Name: "RESSOURCE_NOT_FOUND", Code: 4001, Message: "This ressource was not found"}
	ErrRessourceDeleted        = APIError{Name: "RESSOURCE_DELETED", Code: 4002, Message: "This ressource has been deleted"}
	ErrRessourceAlreadyDeleted = APIError{Name: "RESSOURCE_ALREADY_DELETED", Code: 4003, Message: "This ressource has already been deleted"}
	ErrRessourceAlreadyExists  = APIError{Name: "RESSOURCE_ALREADY_EXISTS", Code: 4004, Message: "This ressource already exists"}

	// server (5xxx)
	ErrInternalError = APIError{Name: "INTERNAL_ERROR", Code: 5001, Message: "An unexpected internal error occurred"}
)

// valueEnvelope is the success response shape: the payload under "value" and
// a zero "error" marker.
type valueEnvelope struct {
	Value any `json:"value"`
	Error int `json:"error"`
}

// SendValue writes a success envelope.
func SendValue(c *gin.Context, status int, value any) {
	c.JSON(status, valueEnvelope{Value: value})
}

// SendError writes a failure envelope carrying the catalog error.
func SendError(c *gin.Context, status int, apiErr APIError) {
	c.JSON(status, gin.H{"error": apiErr})
}

// AbortWithError writes the failure envelope and stops the handler chain.
func AbortWithError(c *gin.Context, status int, apiErr APIError) {
	c.AbortWithStatusJSON(status, gin.H{"error": apiErr})
}

// Shortcut senders.

func RequiredField(c *gin.Context)  { SendError(c, http.StatusBadRequest, ErrRequiredField) }
func InvalidID(c *gin.Context)      { SendError(c, http.StatusBadRequest, ErrInvalidID) }
func Unauthorized(c *gin.Context)   { SendError(c, http.StatusUnauthorized, ErrUnauthorized) }
func Forbidden(c *gin.Context)      { SendError(c, http.StatusForbidden, ErrForbidden) }
func NotFound(c *gin.Context)       { SendError(c, http.StatusNotFound, ErrRessourceNotFound) }
func Deleted(c *gin.Context)        { SendError(c, http.StatusGone, ErrRessourceDeleted) }
func AlreadyDeleted(c *gin.Context) { SendError(c, http.StatusGone, ErrRessourceAlreadyDeleted) }
func InternalError(c *gin.Context)  { SendError(c, http.StatusInternalServerError, ErrInternalError) }

// SendAccountError maps account-service failures onto catalog errors with
// their canonical status codes.
func SendAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequiredField):
		SendError(c, http.StatusBadRequest, ErrRequiredField)
	case errors.Is(err, service.ErrEmailAlreadyExists):
		SendError(c, http.StatusBadRequest, ErrEmailAlreadyExists)
	case errors.Is(err, service.ErrUsernameAlreadyExists):
		SendError(c, http.StatusBadRequest, ErrUsernameAlreadyExists)
	case errors.Is(err, service.ErrInvalidEmail):
		SendError(c, http.StatusUnauthorized, ErrInvalidEmail)
	case errors.Is(err, service.ErrInvalidPassword):
		SendError(c, http.StatusUnauthorized, ErrInvalidPassword)
	case errors.Is(err, service.ErrUserNotConfirmed):
		SendError(c, http.StatusUnauthorized, ErrUserNotConfirmed)
	case errors.Is(err, service.ErrUserDeleted):
		SendError(c, http.StatusUnauthorized, ErrRessourceDeleted)
	case errors.Is(err, service.ErrTokenNotFound):
		SendError(c, http.StatusNotFound, ErrRessourceNotFound)
	default:
		InternalError(c)
	}
}
