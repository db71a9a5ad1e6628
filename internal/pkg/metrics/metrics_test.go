package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Submission("ok")
		r.Archive("assignment", 10)
		r.SkippedFile()
		r.EmptyStream("submission")
	})
}

func TestHandlerExposesCounters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := New()
	rec.Submission("ok")
	rec.Submission("FILE_TOO_LARGE")
	rec.Archive("assignment", 42)
	rec.EmptyStream("submission")

	router := gin.New()
	router.GET("/metrics", rec.Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `portal_submissions_total{outcome="ok"} 1`)
	assert.Contains(t, body, `portal_submissions_total{outcome="FILE_TOO_LARGE"} 1`)
	assert.Contains(t, body, `portal_archive_builds_total{scope="assignment"} 1`)
	assert.Contains(t, body, "portal_archive_bytes_total 42")
	assert.Contains(t, body, `portal_archive_empty_streams_total{scope="submission"} 1`)
}
