package chi

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/provider"
	healthuc "github.com/soycharroup/memoryreel/internal/usecase/health"
)

// --- Tests ---

func TestWriteDomainError_Mapping(t *testing.T) {
	s := &Server{logger: zap.NewNop()}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", domain.ErrValidation, http.StatusBadRequest, "validation_failed"},
		{"capability unsupported", domain.ErrCapabilityUnsupported, http.StatusNotImplemented, "capability_unsupported"},
		{"provider exhausted", domain.NewProviderExhausted(3, errors.New("down")), http.StatusBadGateway, "provider_exhausted"},
		{"service unavailable", domain.ErrServiceUnavailable, http.StatusServiceUnavailable, "service_unavailable"},
		{"configuration", domain.ErrConfiguration, http.StatusInternalServerError, "configuration_error"},
		{"unknown", errors.New("surprise"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.writeDomainError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid error body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("expected code %q, got %q", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWriteDomainError_ProviderDetailsHidden(t *testing.T) {
	s := &Server{logger: zap.NewNop()}
	rec := httptest.NewRecorder()

	s.writeDomainError(rec, domain.NewProviderExhausted(3, errors.New("openai: invalid api key sk-abc")))

	body := rec.Body.String()
	if strings.Contains(body, "openai") || strings.Contains(body, "sk-abc") {
		t.Errorf("provider internals leaked into response: %s", body)
	}
}

func TestFilterSetFromRequest(t *testing.T) {
	f, err := filterSetFromRequest(searchFilters{
		DateFrom:    "2024-06-01T00:00:00Z",
		ContentType: "photo",
		People:      []string{"Alice"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.ContentType() != "photo" || len(f.People()) != 1 {
		t.Errorf("filters lost: %s %v", f.ContentType(), f.People())
	}

	if _, err := filterSetFromRequest(searchFilters{DateFrom: "june 1st"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for malformed date, got %v", err)
	}
}

func TestAnalysisRequestFromDTO(t *testing.T) {
	img := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8})

	req, err := analysisRequestFromDTO(analyzeRequest{Capability: "image_analysis", Image: img})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Capability() != domain.CapabilityImageAnalysis || len(req.Image()) != 2 {
		t.Errorf("request not built correctly: %s, %d bytes", req.Capability(), len(req.Image()))
	}

	if _, err := analysisRequestFromDTO(analyzeRequest{Capability: "image_analysis", Image: "%%%"}); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for bad base64, got %v", err)
	}

	req, err = analysisRequestFromDTO(analyzeRequest{Capability: "query_interpretation", Text: "beach"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Text() != "beach" {
		t.Errorf("expected text payload, got %q", req.Text())
	}
}

func TestHandleSearch_BadBody(t *testing.T) {
	s := NewServer(nil, nil, nil, time.Second, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	s.handleSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleSearch_ValidatorRejects(t *testing.T) {
	s := NewServer(nil, nil, nil, time.Second, zap.NewNop())

	body := `{"text":"beach","page_size":500}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for oversized page_size, got %d", rec.Code)
	}
}

func TestHandleAnalyze_ValidatorRejects(t *testing.T) {
	s := NewServer(nil, nil, nil, time.Second, zap.NewNop())

	body := `{"capability":"mind_reading"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown capability, got %d", rec.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	store := healthuc.NewStore([]provider.Kind{provider.KindOpenAI})
	s := NewServer(nil, nil, healthuc.New(pingOK{}, store), time.Second, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp healthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if resp.Status != "ok" || resp.Providers["openai"] != "available" {
		t.Errorf("unexpected health body: %+v", resp)
	}
}

func TestHandleHealth_DatabaseDown(t *testing.T) {
	store := healthuc.NewStore(nil)
	s := NewServer(nil, nil, healthuc.New(pingFail{}, store), time.Second, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestAnalyzeResponse_NoEmptySections(t *testing.T) {
	res := domain.AnalysisResult{
		Provider:   "openai",
		Capability: domain.CapabilityQueryInterpretation,
		Query: &domain.Interpretation{
			Entities:   []domain.Entity{{Name: "beach", Confidence: 0.9}},
			Confidence: 0.85,
		},
	}

	resp := analyzeResponseFromResult(res)
	if resp.Interpretation == nil || len(resp.Interpretation.Entities) != 1 {
		t.Fatalf("interpretation section missing: %+v", resp)
	}
	if len(resp.Tags) != 0 || len(resp.Faces) != 0 {
		t.Errorf("image sections should be empty for interpretation results")
	}
}

type pingOK struct{}

func (pingOK) Ping(_ context.Context) error { return nil }

type pingFail struct{}

func (pingFail) Ping(_ context.Context) error { return errors.New("unreachable") }
