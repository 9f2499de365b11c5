package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"surveillance-center/backend/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "validation maps to 400",
			err:        &services.ValidationError{Field: "timezone", Reason: "unknown timezone"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found maps to 404",
			err:        &services.NotFoundError{Resource: "camera", ID: 3},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "conflict maps to 409",
			err:        &services.ConflictError{Reason: "config already exists"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "unknown maps to 500",
			err:        fmt.Errorf("connection reset"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(recorder)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Contains(t, recorder.Body.String(), "error")
		})
	}
}
