package handlers

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// A camera registered as inactive must stay inactive: the insert has to
// carry the is_active column instead of leaving it to a column default.
func TestCreateCameraInactiveStaysInactive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cameras" .*"is_active".*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	c, recorder := postJSON(t, `{"name": "yard", "rtsp_url": "rtsp://cam", "is_active": false}`)
	c.Set("user_id", uint(9))
	NewCameraHandler(db).CreateCamera(c)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"is_active":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
