package handlers

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"icon_backend/core"
	"icon_backend/icongen"
	"icon_backend/logging"
	"icon_backend/metrics"
)

// stubGenerator returns a scripted icon set or error.
type stubGenerator struct {
	icons []core.GeneratedIcon
	err   error
	calls int
}

func (s *stubGenerator) GenerateIconSet(_ context.Context, req *core.GenerationRequest, style *icongen.StylePreset) ([]core.GeneratedIcon, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	icons := make([]core.GeneratedIcon, len(s.icons))
	copy(icons, s.icons)
	for i := range icons {
		icons[i].Prompt = req.Prompt
		icons[i].Style = style.ID
	}
	return icons, nil
}

func iconSet() []core.GeneratedIcon {
	now := time.Now().UnixMilli()
	icons := make([]core.GeneratedIcon, icongen.IconsPerSet)
	for i := range icons {
		icons[i] = core.GeneratedIcon{
			ID:          "icon-" + string(rune('a'+i)),
			URL:         "https://img.example/" + string(rune('a'+i)) + ".png",
			GeneratedAt: now,
		}
	}
	return icons
}

func newTestAPI(t *testing.T, gen IconSetGenerator) *API {
	t.Helper()
	store := metrics.NewStore(metrics.DefaultStoreConfig(), time.Now())
	api, err := NewAPI(gen, icongen.NewStyleRegistry(), store, logging.NewNop(), "test")
	if err != nil {
		t.Fatalf("failed to build API: %v", err)
	}
	return api
}

func postGenerate(t *testing.T, api *API, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/generate-icons", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.HandleGenerateIcons(rec, req)
	return rec
}

// TestHandleGenerateIcons_Success tests the success envelope.
func TestHandleGenerateIcons_Success(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	rec := postGenerate(t, api, `{"prompt":"rocket","style":"flat","brandColors":["#FF0000"]}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected JSON content type, got %q", ct)
	}

	var resp SuccessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Success {
		t.Error("expected success true")
	}
	if len(resp.Icons) != icongen.IconsPerSet {
		t.Fatalf("expected %d icons, got %d", icongen.IconsPerSet, len(resp.Icons))
	}
	for _, icon := range resp.Icons {
		if icon.Prompt != "rocket" || icon.Style != "flat" {
			t.Errorf("unexpected icon metadata: %+v", icon)
		}
	}
}

// TestHandleGenerateIcons_ValidationFailure tests that bad requests are
// rejected before the generator runs.
func TestHandleGenerateIcons_ValidationFailure(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty prompt", `{"prompt":"","style":"flat"}`},
		{"unknown style", `{"prompt":"rocket","style":"watercolor"}`},
		{"bad color", `{"prompt":"rocket","style":"flat","brandColors":["red"]}`},
		{"malformed json", `{"prompt":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{icons: iconSet()}
			api := newTestAPI(t, gen)
			rec := postGenerate(t, api, tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if gen.calls != 0 {
				t.Errorf("generator should not run on invalid input, got %d calls", gen.calls)
			}

			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Success {
				t.Error("expected success false")
			}
			if resp.Error.Category != core.CategoryValidation {
				t.Errorf("expected VALIDATION, got %s", resp.Error.Category)
			}
		})
	}
}

// TestHandleGenerateIcons_GenerationFailure tests that generation errors
// surface as classified payloads with the classified status.
func TestHandleGenerateIcons_GenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: &core.APIError{
		Status:  500,
		Code:    core.ErrCodeGenerationFailed,
		Message: "Failed to generate complete icon set. Generated 2 out of 4 icons. Errors: icon 1: boom; icon 3: boom",
	}}
	api := newTestAPI(t, gen)
	rec := postGenerate(t, api, `{"prompt":"rocket","style":"flat"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Category != core.CategoryServer {
		t.Errorf("expected SERVER, got %s", resp.Error.Category)
	}
	if !strings.Contains(resp.Error.Message, "Generated 2 out of 4 icons") {
		t.Errorf("expected aggregate message, got %q", resp.Error.Message)
	}
	if !resp.Error.Recoverable {
		t.Error("server failures should be recoverable")
	}
}

// TestHandleGenerateIcons_AuthFailureNotRecoverable tests classification
// of provider auth failures through the handler.
func TestHandleGenerateIcons_AuthFailureNotRecoverable(t *testing.T) {
	gen := &stubGenerator{err: &core.APIError{Status: 401, Message: "bad key"}}
	api := newTestAPI(t, gen)
	rec := postGenerate(t, api, `{"prompt":"rocket","style":"flat"}`)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error.Category != core.CategoryAuthentication {
		t.Errorf("expected AUTHENTICATION, got %s", resp.Error.Category)
	}
	if resp.Error.Recoverable {
		t.Error("authentication failures must not be recoverable")
	}
}

// TestHandleGenerateIcons_MethodCheck tests the POST-only restriction.
func TestHandleGenerateIcons_MethodCheck(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	req := httptest.NewRequest(http.MethodGet, "/api/generate-icons", nil)
	rec := httptest.NewRecorder()
	api.HandleGenerateIcons(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

// TestHandleStyles tests the style listing endpoint.
func TestHandleStyles(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	req := httptest.NewRequest(http.MethodGet, "/api/styles", nil)
	rec := httptest.NewRecorder()
	api.HandleStyles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StylesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 5 || len(resp.Styles) != 5 {
		t.Fatalf("expected 5 styles, got count=%d len=%d", resp.Count, len(resp.Styles))
	}
	if resp.Styles[0].ID != "flat" {
		t.Errorf("expected flat first, got %s", resp.Styles[0].ID)
	}
}

// TestHandleStatus tests the status endpoint after traffic.
func TestHandleStatus(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	postGenerate(t, api, `{"prompt":"rocket","style":"flat"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/status?limit=5", nil)
	rec := httptest.NewRecorder()
	api.HandleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Health != metrics.HealthRunning {
		t.Errorf("expected running, got %s", resp.Health)
	}
	if resp.Version != "test" {
		t.Errorf("expected version test, got %s", resp.Version)
	}
	if resp.Metrics.TotalRequests != 1 || resp.Metrics.TotalIcons != 4 {
		t.Errorf("unexpected metrics: %+v", resp.Metrics)
	}
	if len(resp.Recent) != 1 || resp.Recent[0].Style != "flat" {
		t.Errorf("unexpected recent records: %+v", resp.Recent)
	}
}

// TestHandleHealth tests the liveness probe.
func TestHandleHealth(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	api.HandleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

// TestRegister tests route wiring through a full mux.
func TestRegister(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	mux := http.NewServeMux()
	api.Register(mux)

	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/styles")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200 from /api/styles, got %d", resp.StatusCode)
	}
}

// pngFixture builds a minimal PNG header with the given IHDR dimensions.
func pngFixture(width, height uint32) []byte {
	buf := make([]byte, 33)
	copy(buf, []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A})
	binary.BigEndian.PutUint32(buf[8:], 13)
	copy(buf[12:], "IHDR")
	binary.BigEndian.PutUint32(buf[16:], width)
	binary.BigEndian.PutUint32(buf[20:], height)
	buf[24] = 8 // bit depth
	buf[25] = 6 // color type RGBA
	return buf
}

// auditAPI builds an API with a validator fetching through the given
// test server's client.
func auditAPI(t *testing.T, server *httptest.Server) *API {
	t.Helper()
	downloader := icongen.NewDownloader(server.Client())
	validator, err := icongen.NewImageValidator(downloader, logging.NewNop())
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}
	return newTestAPI(t, &stubGenerator{icons: iconSet()}).WithValidator(validator)
}

func getValidateIcon(t *testing.T, api *API, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/validate-icon?"+query, nil)
	rec := httptest.NewRecorder()
	api.HandleValidateIcon(rec, req)
	return rec
}

// TestHandleValidateIcon_PNG tests the audit verdict for a well-formed
// 512x512 PNG.
func TestHandleValidateIcon_PNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(pngFixture(512, 512))
	}))
	defer server.Close()

	api := auditAPI(t, server)
	rec := getValidateIcon(t, api, "url="+url.QueryEscape(server.URL+"/icon.png"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateIconResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.PNG || !resp.DimensionsMatch {
		t.Errorf("expected passing verdict, got %+v", resp)
	}
	if resp.Width != 512 || resp.Height != 512 {
		t.Errorf("expected default 512x512 expectation, got %+v", resp)
	}
}

// TestHandleValidateIcon_DimensionMismatch tests that explicit expected
// dimensions are honored.
func TestHandleValidateIcon_DimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngFixture(512, 512))
	}))
	defer server.Close()

	api := auditAPI(t, server)
	rec := getValidateIcon(t, api, "url="+url.QueryEscape(server.URL)+"&width=1024&height=1024")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateIconResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.PNG {
		t.Error("expected PNG signature to pass")
	}
	if resp.DimensionsMatch {
		t.Error("expected dimension mismatch against 1024x1024")
	}
}

// TestHandleValidateIcon_NotPNG tests the verdict for a non-PNG body.
func TestHandleValidateIcon_NotPNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'})
	}))
	defer server.Close()

	api := auditAPI(t, server)
	rec := getValidateIcon(t, api, "url="+url.QueryEscape(server.URL))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateIconResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.PNG || resp.DimensionsMatch {
		t.Errorf("expected failing verdict, got %+v", resp)
	}
}

// TestHandleValidateIcon_BadURL tests rejection of missing or non-HTTP
// URLs.
func TestHandleValidateIcon_BadURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(pngFixture(512, 512))
	}))
	defer server.Close()
	api := auditAPI(t, server)

	for _, query := range []string{"", "url=" + url.QueryEscape("ftp://host/icon.png")} {
		rec := getValidateIcon(t, api, query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, rec.Code)
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Error.Category != core.CategoryValidation {
			t.Errorf("query %q: expected VALIDATION, got %s", query, resp.Error.Category)
		}
	}
}

// TestHandleValidateIcon_Disabled tests the response when no validator
// is attached.
func TestHandleValidateIcon_Disabled(t *testing.T) {
	api := newTestAPI(t, &stubGenerator{icons: iconSet()})
	rec := getValidateIcon(t, api, "url="+url.QueryEscape("https://img.example/icon.png"))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "VALIDATOR_DISABLED") {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
