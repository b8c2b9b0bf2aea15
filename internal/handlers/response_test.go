package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblio-app/biblio/internal/apperr"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "validation error",
			err:            apperr.Validation("name is required", map[string]string{"name": "required"}),
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apperr.CodeValidation,
		},
		{
			name:           "not found",
			err:            apperr.NotFound("book"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   apperr.CodeNotFound,
		},
		{
			name:           "business rule",
			err:            apperr.BusinessRule(apperr.CodeCopyUnavailable, "copy is loaned"),
			expectedStatus: http.StatusConflict,
			expectedCode:   apperr.CodeCopyUnavailable,
		},
		{
			name:           "constraint violation",
			err:            apperr.New(apperr.KindConstraint, apperr.CodeConstraintViolation, "email already registered"),
			expectedStatus: http.StatusConflict,
			expectedCode:   apperr.CodeConstraintViolation,
		},
		{
			name:           "store timeout",
			err:            apperr.New(apperr.KindStoreTimeout, apperr.CodeStoreTimeout, "store timed out"),
			expectedStatus: http.StatusGatewayTimeout,
			expectedCode:   apperr.CodeStoreTimeout,
		},
		{
			name:           "internal error",
			err:            apperr.New(apperr.KindInternal, apperr.CodeInternal, "pool exhausted"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperr.CodeInternal,
		},
		{
			name:           "plain error",
			err:            errors.New("something broke"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apperr.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.expectedCode, body.Error.Code)
		})
	}
}

func TestRespondErrorScrubsInternalMessage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, apperr.New(apperr.KindInternal, apperr.CodeInternal, "connect to 10.0.0.5:5432 refused"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}

func TestRespondErrorIncludesValidationDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondError(c, apperr.Validation("invalid input", map[string]string{"isbn": "must be 13 digits"}))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	details, ok := body.Error.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "must be 13 digits", details["isbn"])
}

func TestPathID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		param   string
		want    int64
		wantOK  bool
		status  int
	}{
		{"valid id", "42", 42, true, 0},
		{"zero", "0", 0, false, http.StatusBadRequest},
		{"negative", "-1", 0, false, http.StatusBadRequest},
		{"garbage", "abc", 0, false, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Params = gin.Params{{Key: "id", Value: tt.param}}

			id, ok := pathID(c, "id")

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, id)
			if !tt.wantOK {
				assert.Equal(t, tt.status, w.Code)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("GET", "/test?page=3&limit=abc", nil)
	c.Request = req

	assert.Equal(t, 3, queryInt(c, "page", 1))
	assert.Equal(t, 50, queryInt(c, "limit", 50))
	assert.Equal(t, 20, queryInt(c, "offset", 20))
}
