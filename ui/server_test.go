package ui

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utitriage/app"
	"utitriage/internal"
	"utitriage/internal/testkit"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := internal.NewLogger(internal.LogLevelError)
	predictor, err := app.NewPredictor(testkit.Set(), logger)
	require.NoError(t, err)

	s, err := NewServer(predictor, Options{
		GinMode:                  gin.TestMode,
		MaxConcurrentAssessments: 2,
		RequestTimeout:           time.Second,
		Logger:                   logger,
	})
	require.NoError(t, err)
	return s
}

func postForm(s *Server, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/assess", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func detailedPositive() url.Values {
	v := url.Values{"mode": {"detailed"}}
	for k, val := range testkit.PositiveMap() {
		v.Set(k, toString(val))
	}
	return v
}

func toString(v any) string {
	data, _ := json.Marshal(v)
	return strings.Trim(string(data), `"`)
}

func TestIndexRendersBothGroups(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Basic Symptom Assessment")
	assert.Contains(t, body, "Detailed Medical Evaluation")
	assert.Contains(t, body, `name="leukocyte_esterase"`)
	assert.Contains(t, body, `name="age"`)
	assert.Contains(t, body, "</html>")
}

func TestAssessDetailedPositive(t *testing.T) {
	s := newTestServer(t)
	w := postForm(s, detailedPositive())

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "High risk")
	assert.Contains(t, body, "0.83")
	assert.Contains(t, body, "High probability of UTI. Immediate clinical evaluation recommended.")
	assert.Contains(t, body, "<strong>Seek care today.</strong>")
	assert.Contains(t, body, "level-high")
}

func TestAssessBasicUsesDefaults(t *testing.T) {
	s := newTestServer(t)
	values := url.Values{
		"mode": {"basic"}, "age": {"25"}, "gender": {"M"},
		"frequent_urination": {"0"}, "painful_urination": {"0"}, "fever": {"0"},
		"urgent_urination": {"0"}, "cloudy_urine": {"0"},
		// detailed fields are ignored in basic mode
		"nitrites": {"1"}, "leukocyte_esterase": {"1"}, "wbc": {"30"},
	}
	w := postForm(s, values)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Low UTI probability. Continue monitoring symptoms.")
}

func TestAssessInvalidFormRerenders(t *testing.T) {
	s := newTestServer(t)
	w := postForm(s, url.Values{"mode": {"basic"}, "age": {"-4"}, "gender": {"Z"}})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Please correct the highlighted fields.")
	assert.Contains(t, body, "must be M or F")
	assert.Contains(t, body, `value="-4"`)
}

func TestAssessBusy(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.assessSem.Acquire(context.Background(), 2))
	defer s.assessSem.Release(2)

	s.timeout = 20 * time.Millisecond
	w := postForm(s, detailedPositive())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "busy")
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, testkit.DemoVersion, body["artifacts"])
}

func TestStaticFiles(t *testing.T) {
	s := newTestServer(t)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGuidanceCoversEveryRecommendation(t *testing.T) {
	g, err := renderGuidance()
	require.NoError(t, err)
	assert.Len(t, g, 5)
	for level, html := range g {
		assert.Contains(t, string(html), "<p>", level)
	}
}

func TestGuidanceRequiresEveryLevel(t *testing.T) {
	saved := guidanceNotes["moderate"]
	delete(guidanceNotes, "moderate")
	t.Cleanup(func() { guidanceNotes["moderate"] = saved })

	_, err := renderGuidance()
	assert.ErrorContains(t, err, "moderate")
}
