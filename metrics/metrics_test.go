package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"studio/gallery"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	before := testutil.ToFloat64(photosDownloadedTotal)
	proofsBefore := testutil.ToFloat64(galleryEventsTotal.WithLabelValues("proof_recorded"))

	r := Recorder{}
	r.Publish(gallery.Event{Type: gallery.EventDownload, Count: 3})
	r.Publish(gallery.Event{Type: gallery.EventProofRecorded})

	assert.Equal(t, before+3, testutil.ToFloat64(photosDownloadedTotal))
	assert.Equal(t, proofsBefore+1, testutil.ToFloat64(galleryEventsTotal.WithLabelValues("proof_recorded")))
}

func TestFailure(t *testing.T) {
	err := &gallery.Error{Status: gallery.StatusForbidden, Reason: gallery.ReasonExpired}
	before := testutil.ToFloat64(galleryErrorsTotal.WithLabelValues("Forbidden", "expired"))
	Failure(err)
	Failure(nil)
	assert.Equal(t, before+1, testutil.ToFloat64(galleryErrorsTotal.WithLabelValues("Forbidden", "expired")))
}

func TestMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/galleries/:id", func(c *gin.Context) { c.Status(http.StatusGone) })
	router.GET("/metrics", Handler())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/galleries/12", nil))
	assert.Equal(t, http.StatusGone, w.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/galleries/:id", "410")))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "studio_http_requests_total"))
}
