package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"shelfmark/internal/service"
)

func TestSendValueEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	SendValue(c, http.StatusOK, gin.H{"hello": "world"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var body struct {
		Value map[string]string `json:"value"`
		Error int               `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unexpected error decoding body: %v", err)
	}
	if body.Error != 0 {
		t.Fatalf("expected zero error marker, got %d", body.Error)
	}
	if body.Value["hello"] != "world" {
		t.Fatalf("unexpected value payload: %+v", body.Value)
	}
}

func TestSendErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		status         int
		apiErr         APIError
		expectedStatus int
	}{
		{name: "NotFound", status: http.StatusNotFound, apiErr: ErrRessourceNotFound, expectedStatus: http.StatusNotFound},
		{name: "Unauthorized", status: http.StatusUnauthorized, apiErr: ErrUnauthorized, expectedStatus: http.StatusUnauthorized},
		{name: "Internal", status: http.StatusInternalServerError, apiErr: ErrInternalError, expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			SendError(c, tt.status, tt.apiErr)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var body struct {
				Error APIError `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unexpected error decoding body: %v", err)
			}
			if body.Error.Name != tt.apiErr.Name {
				t.Fatalf("expected error name %q, got %q", tt.apiErr.Name, body.Error.Name)
			}
			if body.Error.Code != tt.apiErr.Code {
				t.Fatalf("expected error code %d, got %d", tt.apiErr.Code, body.Error.Code)
			}
			if body.Error.Message == "" {
				t.Fatal("expected a human readable message")
			}
		})
	}
}

func TestSendAccountErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedName   string
	}{
		{name: "RequiredField", err: service.ErrRequiredField, expectedStatus: http.StatusBadRequest, expectedName: "REQUIRED_FIELD"},
		{name: "EmailExists", err: service.ErrEmailAlreadyExists, expectedStatus: http.StatusBadRequest, expectedName: "EMAIL_ALREADY_EXISTS"},
		{name: "UsernameExists", err: service.ErrUsernameAlreadyExists, expectedStatus: http.StatusBadRequest, expectedName: "USERNAME_ALREADY_EXISTS"},
		{name: "InvalidEmail", err: service.ErrInvalidEmail, expectedStatus: http.StatusUnauthorized, expectedName: "INVALID_EMAIL"},
		{name: "InvalidPassword", err: service.ErrInvalidPassword, expectedStatus: http.StatusUnauthorized, expectedName: "INVALID_PASSWORD"},
		{name: "NotConfirmed", err: service.ErrUserNotConfirmed, expectedStatus: http.StatusUnauthorized, expectedName: "USER_NOT_CONFIRMED"},
		{name: "Deleted", err: service.ErrUserDeleted, expectedStatus: http.StatusUnauthorized, expectedName: "RESSOURCE_DELETED"},
		{name: "TokenNotFound", err: service.ErrTokenNotFound, expectedStatus: http.StatusNotFound, expectedName: "RESSOURCE_NOT_FOUND"},
		{name: "Unknown", err: http.ErrBodyNotAllowed, expectedStatus: http.StatusInternalServerError, expectedName: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			SendAccountError(c, tt.err)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			var body struct {
				Error APIError `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("unexpected error decoding body: %v", err)
			}
			if body.Error.Name != tt.expectedName {
				t.Fatalf("expected error name %q, got %q", tt.expectedName, body.Error.Name)
			}
		})
	}
}
