package analyzer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Veraticus/platewise/internal/model"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://analysis.test"

func TestClient_AnalyzeUploadsMultipart(t *testing.T) {
	var gotName, gotType string
	var gotData []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()

		gotName = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotData, _ = io.ReadAll(file)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"result":"{\"foods\":[]}","analysis_timestamp":"2024-06-10T06:13:20"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", 5*time.Second)
	resp, err := client.Analyze(context.Background(), model.ImageFile{
		Name: "lunch.jpg", MIMEType: "image/jpeg", Data: []byte("fake-jpeg"),
	})
	require.NoError(t, err)

	assert.Equal(t, "lunch.jpg", gotName)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, []byte("fake-jpeg"), gotData)

	assert.Equal(t, `{"foods":[]}`, resp.ResultText())
	assert.Equal(t, "2024-06-10T06:13:20", resp.AnalysisTimestamp)
	require.NotNil(t, resp.Success)
	assert.True(t, *resp.Success)
}

func TestClient_AnalyzeStatusError(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusInternalServerError, `{"detail":"model crashed"}`))

	client := NewClient(testBaseURL, time.Second)
	_, err := client.Analyze(context.Background(), model.ImageFile{Name: "a.png", MIMEType: "image/png"})
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "Internal Server Error", statusErr.Status)
	assert.Contains(t, statusErr.Body, "model crashed")
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_AnalyzeInvalidJSON(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/analyze",
		httpmock.NewStringResponder(http.StatusOK, `<html>proxy error</html>`))

	_, err := NewClient(testBaseURL, time.Second).Analyze(context.Background(), model.ImageFile{Name: "a.png"})
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_AnalyzeTransportError(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodPost, testBaseURL+"/analyze",
		httpmock.NewErrorResponder(errors.New("connection refused")))

	_, err := NewClient(testBaseURL, time.Second).Analyze(context.Background(), model.ImageFile{Name: "a.png"})
	assert.ErrorIs(t, err, ErrServiceUnavailable)
}

func TestClient_Health(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/health",
		httpmock.NewStringResponder(http.StatusOK, `{"status":"healthy","services":{"usda_service":"fallback"}}`))

	status, err := NewClient(testBaseURL, time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "fallback", status.Services["usda_service"])
}

func TestClient_HealthFailures(t *testing.T) {
	tests := []struct {
		responder httpmock.Responder
		name      string
	}{
		{name: "unhealthy status", responder: httpmock.NewStringResponder(http.StatusServiceUnavailable, "down")},
		{name: "unreachable", responder: httpmock.NewErrorResponder(errors.New("dial tcp: refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Activate()
			t.Cleanup(httpmock.DeactivateAndReset)
			httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/health", tt.responder)

			_, err := NewClient(testBaseURL, time.Second).Health(context.Background())
			assert.ErrorIs(t, err, ErrServiceUnavailable)
		})
	}
}

func TestClient_HealthPlainBody(t *testing.T) {
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
	httpmock.RegisterResponder(http.MethodGet, testBaseURL+"/health",
		httpmock.NewStringResponder(http.StatusOK, "OK"))

	status, err := NewClient(testBaseURL, time.Second).Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
}
