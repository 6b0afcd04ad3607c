package response

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/teacher-attendance-go/internal/domain/school"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestSuccessWithMeta(t *testing.T) {
	w := httptest.NewRecorder()
	SuccessWithMeta(w, []string{"a"}, &Meta{Page: 1, Limit: 10, TotalItems: 1, TotalPages: 1})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	resp := decode(t, w)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Error)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.TotalItems)
}

func TestErrorEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	BadRequest(w, "Invalid month", map[string]string{"month": "must be a number"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeBadRequest, resp.Error.Code)
	assert.Equal(t, "must be a number", resp.Error.Details["month"])
}

func TestFile(t *testing.T) {
	w := httptest.NewRecorder()
	File(w, "attendance t1.xlsx", "application/octet-stream", []byte("xlsx"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename*=UTF-8''attendance%20t1.xlsx", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "4", w.Header().Get("Content-Length"))
	assert.Equal(t, "xlsx", w.Body.String())
}

func TestHandleError_InvalidSchoolConfig(t *testing.T) {
	w := httptest.NewRecorder()
	HandleError(w, fmt.Errorf("failed to load attendance config: %w",
		fmt.Errorf("%w: unknown timezone %q", school.ErrInvalidConfig, "Asia/Jakrta")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInternal, resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "Jakrta")
}
