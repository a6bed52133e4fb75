package testutil

import (
	"context"
	"encoding/json"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/middlewares"
	"ggarquitectos-site/internal/mocks"
	"ggarquitectos-site/internal/models"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"
)

// TestContext holds everything needed for testing
type TestContext struct {
	AppContext      *middlewares.AppContext
	Request         *http.Request
	Response        *httptest.ResponseRecorder
	MockController  *gomock.Controller
	MockPreferences *mocks.MockPreferenceProvider
	MockVerifier    *mocks.MockIDTokenVerifier
	Bus             *events.Bus
	LogHandler      *TestLogHandler
}

// NewTestContextWithURL creates a complete test setup with sensible defaults
func NewTestContextWithURL(t *testing.T, method, url string) *TestContext {
	return newTestContext(t, httptest.NewRequest(method, url, nil))
}

// NewTestContextWithBody builds a request carrying a JSON body.
func NewTestContextWithBody(t *testing.T, method, url, body string) *TestContext {
	req := httptest.NewRequest(method, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return newTestContext(t, req)
}

func newTestContext(t *testing.T, req *http.Request) *TestContext {
	cfg := &config.Config{}

	logHandler := NewTestLogHandler()
	logger := slog.New(logHandler)

	ctrl := gomock.NewController(t)

	mockPreferences := mocks.NewMockPreferenceProvider(ctrl)
	mockVerifier := mocks.NewMockIDTokenVerifier(ctrl)
	bus := events.NewBus(logger)

	rr := httptest.NewRecorder()

	ctx := context.Background()
	if req != nil {
		ctx = req.Context()
	}

	appCtx := &middlewares.AppContext{
		Context:     ctx,
		Config:      cfg,
		Logger:      logger,
		Preferences: mockPreferences,
		Verifier:    mockVerifier,
		Bus:         bus,
		Request:     req,
		Response:    rr,
	}

	return &TestContext{
		AppContext:      appCtx,
		Request:         req,
		Response:        rr,
		MockController:  ctrl,
		MockPreferences: mockPreferences,
		MockVerifier:    mockVerifier,
		Bus:             bus,
		LogHandler:      logHandler,
	}
}

// DiscardLogger is for components whose logs a test does not inspect.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Finish should be called at the end of tests to clean up mocks
func (tc *TestContext) Finish() {
	if tc.MockController != nil {
		tc.MockController.Finish()
	}
}

func (tc *TestContext) AssertLogContains(t *testing.T, level slog.Level, message string) {
	if !tc.LogHandler.ContainsMessage(level, message) {
		t.Errorf("Expected to find log entry with level %v containing message: %s", level, message)
	}
}

func (tc *TestContext) AssertLogCount(t *testing.T, level slog.Level, expectedCount int) {
	count := tc.LogHandler.CountByLevel(level)
	if count != expectedCount {
		t.Errorf("Expected %d log entries at level %v, got %d", expectedCount, level, count)
	}
}

// LogRecord returns the first entry logged with message at level.
func (tc *TestContext) LogRecord(t *testing.T, level slog.Level, message string) TestLogRecord {
	record, ok := tc.LogHandler.Find(level, message)
	if !ok {
		t.Fatalf("Expected a log entry with level %v and message: %s", level, message)
	}
	return record
}

// CallHandler executes a handler with the test context
func (tc *TestContext) CallHandler(handler middlewares.AppHandler) {
	handler(tc.AppContext)
}

// AssertStatus checks the HTTP status code
func (tc *TestContext) AssertStatus(t *testing.T, expectedStatus int) {
	if tc.Response.Code != expectedStatus {
		t.Errorf("Expected status %d, got %d", expectedStatus, tc.Response.Code)
	}
}

// AssertContentType checks the content type header
func (tc *TestContext) AssertContentType(t *testing.T, expectedType string) {
	if ct := tc.Response.Header().Get("Content-Type"); ct != expectedType {
		t.Errorf("Expected content type %s, got %s", expectedType, ct)
	}
}

// GetJSONResponse parses the response body as JSON
func (tc *TestContext) GetJSONResponse(t *testing.T) map[string]interface{} {
	var response map[string]interface{}
	if err := json.Unmarshal(tc.Response.Body.Bytes(), &response); err != nil {
		t.Fatalf("Could not parse JSON response: %v", err)
	}
	return response
}

// AssertJSONField checks a specific field in a JSON response
func (tc *TestContext) AssertJSONField(t *testing.T, field string, expected any) {
	response := tc.GetJSONResponse(t)
	if actual, ok := response[field]; !ok || actual != expected {
		t.Errorf("Expected %s to be %s, got %v", field, expected, response[field])
	}
}

func (tc *TestContext) AssertJSONBool(t *testing.T, field string, expected bool) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualBool, ok := actual.(bool)
	if !ok {
		t.Errorf("Expected %s to be a boolean, got %T", field, actual)
		return
	}

	if actualBool != expected {
		t.Errorf("Expected %s to be %v, got %v", field, expected, actualBool)
	}
}

// AssertJSONString checks a specific string field in a JSON response
func (tc *TestContext) AssertJSONString(t *testing.T, field string, expected string) {
	response := tc.GetJSONResponse(t)
	actual, exists := response[field]

	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	actualString, ok := actual.(string)
	if !ok {
		t.Errorf("Expected %s to be a string, got %T", field, actual)
		return
	}

	if actualString != expected {
		t.Errorf("Expected %s to be %q, got %q", field, expected, actualString)
	}
}

// AssertUser checks the user object under field against expected.
func (tc *TestContext) AssertUser(t *testing.T, field string, expected models.UserSummary) {
	response := tc.GetJSONResponse(t)
	raw, exists := response[field]
	if !exists {
		t.Errorf("Field %s not found in response", field)
		return
	}

	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatalf("Could not re-encode %s: %v", field, err)
	}

	var actual models.UserSummary
	if err := json.Unmarshal(data, &actual); err != nil {
		t.Errorf("Expected %s to be a user object: %v", field, err)
		return
	}

	if actual != expected {
		t.Errorf("Expected %s to be %+v, got %+v", field, expected, actual)
	}
}

// ExpectShowDeviceInfo sets up an expectation for Preferences.ShowDeviceInfo()
func (tc *TestContext) ExpectShowDeviceInfo(result bool) *gomock.Call {
	return tc.MockPreferences.EXPECT().ShowDeviceInfo(tc.AppContext).Return(result)
}
