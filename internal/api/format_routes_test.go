package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sttstack/sttstack/adapters/audioformat"
	"github.com/sttstack/sttstack/domain"
)

func newFormatServer(t *testing.T, opts audioformat.Options) (*echo.Echo, *audioformat.MockAudioFormatHandler) {
	t.Helper()

	if opts.ConversionDelay == nil {
		noDelay := time.Duration(0)
		opts.ConversionDelay = &noDelay
	}

	handler := audioformat.NewMockAudioFormatHandler(zap.NewNop(), opts)

	e := echo.New()
	e.Validator = NewValidator()
	InitFormatRoutes(e, handler, zap.NewNop())
	return e, handler
}

// uploadRequest builds a multipart POST with a synthetic audio file and the
// given extra form fields.
func uploadRequest(t *testing.T, target, filename string, fields map[string]string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write field %s: %v", key, err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("Failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("mock audio payload")); err != nil {
		t.Fatalf("Failed to write form file: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestFormatHealthEndpoint(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var health HealthResponse
	decodeBody(t, rec, &health)
	if health.Status != "healthy" {
		t.Errorf("Expected healthy, got %s", health.Status)
	}
	if health.Version != ServiceVersion {
		t.Errorf("Expected version %s, got %s", ServiceVersion, health.Version)
	}
	if health.Dependencies["audio_handler"] != "initialized" {
		t.Errorf("Expected initialized audio_handler, got %s", health.Dependencies["audio_handler"])
	}
}

func TestFormatListEndpoint(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var formats []string
	decodeBody(t, rec, &formats)
	found := false
	for _, f := range formats {
		if f == "wav" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected wav in supported formats, got %v", formats)
	}
}

func TestValidateEndpointSuccess(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/validate", "test.wav", map[string]string{"expected_format": "wav"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp FormatValidationResponse
	decodeBody(t, rec, &resp)
	if !resp.Valid {
		t.Errorf("Expected valid=true, got %+v", resp)
	}
	if resp.Format != "wav" {
		t.Errorf("Expected format wav, got %s", resp.Format)
	}
}

func TestValidateEndpointMismatch(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/validate", "test.wav", map[string]string{"expected_format": "mp3"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp FormatValidationResponse
	decodeBody(t, rec, &resp)
	if resp.Valid {
		t.Errorf("Expected valid=false for mismatched format, got %+v", resp)
	}
}

func TestValidateEndpointFileNotFound(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{SimulateFileNotFound: true})

	req := uploadRequest(t, "/validate", "test.wav", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp FormatValidationResponse
	decodeBody(t, rec, &resp)
	if resp.Valid {
		t.Errorf("Expected valid=false for missing file, got %+v", resp)
	}
	if resp.Message == "" {
		t.Error("Expected a failure message")
	}
}

func TestValidateEndpointMissingFile(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/validate", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for missing file part, got %d", rec.Code)
	}
}

func TestDetectEndpoint(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/detect", "sample.flac", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp FormatDetectionResponse
	decodeBody(t, rec, &resp)
	if resp.Format != "flac" {
		t.Errorf("Expected flac, got %s", resp.Format)
	}
	if resp.Confidence != 0.95 {
		t.Errorf("Expected confidence 0.95, got %v", resp.Confidence)
	}
}

func TestDetectEndpointSimulatedFailure(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{SimulateDetectionError: true})

	req := uploadRequest(t, "/detect", "sample.wav", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", rec.Code, rec.Body.String())
	}

	var derr domain.Error
	decodeBody(t, rec, &derr)
	if derr.Code != domain.CodeAudioFormat {
		t.Errorf("Expected %s, got %s", domain.CodeAudioFormat, derr.Code)
	}
}

func TestMetadataEndpoint(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/metadata", "short_clip.wav", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var md struct {
		Duration float64 `json:"duration"`
		Format   string  `json:"format"`
	}
	decodeBody(t, rec, &md)
	if md.Duration != 5.2 {
		t.Errorf("Expected duration 5.2 for short clip, got %v", md.Duration)
	}
	if md.Format != "wav" {
		t.Errorf("Expected wav, got %s", md.Format)
	}
}

func TestConvertEndpointSuccess(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/convert", "test.wav", map[string]string{"target_format": "mp3"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ConversionResponse
	decodeBody(t, rec, &resp)
	if !resp.Success {
		t.Fatalf("Expected success, got %+v", resp)
	}
	if resp.OriginalFormat != "wav" {
		t.Errorf("Expected original format wav, got %s", resp.OriginalFormat)
	}
	if !strings.HasSuffix(resp.FilePath, "_converted.mp3") {
		t.Errorf("Expected converted path suffix, got %s", resp.FilePath)
	}
}

func TestConvertEndpointUnsupportedTarget(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/convert", "test.wav", map[string]string{"target_format": "xyz"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	if resp.Error != "unsupported_target_format" {
		t.Errorf("Expected unsupported_target_format, got %s", resp.Error)
	}
}

func TestConvertEndpointMissingTarget(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := uploadRequest(t, "/convert", "test.wav", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 without target_format, got %d", rec.Code)
	}
}

func TestConvertEndpointSimulatedFailure(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{SimulateConversionError: true})

	req := uploadRequest(t, "/convert", "test.wav", map[string]string{"target_format": "mp3"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var resp ConversionResponse
	decodeBody(t, rec, &resp)
	if resp.Success {
		t.Errorf("Expected success=false, got %+v", resp)
	}
	if resp.Message == "" {
		t.Error("Expected a failure message")
	}
}

func TestConversionStatusNotImplemented(t *testing.T) {
	e, _ := newFormatServer(t, audioformat.Options{})

	req := httptest.NewRequest(http.MethodGet, "/convert/some-id", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotImplemented {
		t.Errorf("Expected 501, got %d", rec.Code)
	}
}
