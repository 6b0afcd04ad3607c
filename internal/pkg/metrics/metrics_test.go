package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.CheckIn("LATE")
	rec.CheckIn("LATE")
	rec.CheckIn("PRESENT")
	rec.CheckOut(true)
	rec.Override("SICK")
	rec.EarlyDeparture("approved")

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.checkIns.WithLabelValues("LATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.checkIns.WithLabelValues("PRESENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.checkOuts.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.overrides.WithLabelValues("SICK")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.earlyDepartures.WithLabelValues("approved")))
}

func TestRecorder_Nil(t *testing.T) {
	var rec *Recorder
	assert.NotPanics(t, func() {
		rec.CheckIn("PRESENT")
		rec.CheckOut(false)
		rec.Override("ABSENT")
		rec.EarlyDeparture("requested")
	})
}

func TestHandler(t *testing.T) {
	reg := NewRegistry()
	NewRecorder(reg).CheckIn("PRESENT")

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), `teacher_attendance_check_ins_total{status="PRESENT"} 1`))
}
