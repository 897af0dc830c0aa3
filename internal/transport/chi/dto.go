package chi

import (
	"fmt"
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/search/filter"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
	"github.com/soycharroup/memoryreel/internal/usecase/health"
)

// --- Requests ---

type searchFilters struct {
	DateFrom    string   `json:"date_from,omitempty" validate:"omitempty,max=64"`
	DateTo      string   `json:"date_to,omitempty" validate:"omitempty,max=64"`
	ContentType string   `json:"content_type,omitempty" validate:"omitempty,oneof=photo video"`
	People      []string `json:"people,omitempty" validate:"max=32,dive,max=128"`
}

type searchRequest struct {
	Text     string        `json:"text" validate:"max=1024"`
	Filters  searchFilters `json:"filters"`
	Page     int           `json:"page" validate:"gte=0"`
	PageSize int           `json:"page_size" validate:"gte=0,lte=100"`
	Provider string        `json:"provider,omitempty" validate:"omitempty,oneof=openai gemini grok"`
}

type analyzeRequest struct {
	Capability string `json:"capability" validate:"required,oneof=image_analysis face_detection query_interpretation"`
	Image      string `json:"image,omitempty" validate:"omitempty,base64"`
	Text       string `json:"text,omitempty" validate:"max=1024"`
	Provider   string `json:"provider,omitempty" validate:"omitempty,oneof=openai gemini grok"`
}

// filterSetFromRequest parses and validates the filter block.
func filterSetFromRequest(f searchFilters) (filter.Set, error) {
	var dateFrom, dateTo *time.Time
	if f.DateFrom != "" {
		t, err := time.Parse(time.RFC3339, f.DateFrom)
		if err != nil {
			return filter.Set{}, fmt.Errorf("%w: invalid date_from: %v", domain.ErrValidation, err)
		}
		dateFrom = &t
	}
	if f.DateTo != "" {
		t, err := time.Parse(time.RFC3339, f.DateTo)
		if err != nil {
			return filter.Set{}, fmt.Errorf("%w: invalid date_to: %v", domain.ErrValidation, err)
		}
		dateTo = &t
	}

	return filter.New(dateFrom, dateTo, f.ContentType, f.People)
}

// --- Responses ---

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tagResponse struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type faceResponse struct {
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	PersonID   string  `json:"person_id,omitempty"`
}

type sceneResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type itemResponse struct {
	ID          string         `json:"id"`
	ContentType string         `json:"content_type"`
	CapturedAt  time.Time      `json:"captured_at"`
	Location    string         `json:"location,omitempty"`
	Device      string         `json:"device,omitempty"`
	Tags        []tagResponse  `json:"tags,omitempty"`
	Faces       []faceResponse `json:"faces,omitempty"`
	Scene       *sceneResponse `json:"scene,omitempty"`
	Score       float64        `json:"score"`
}

type searchResponse struct {
	Items        []itemResponse `json:"items"`
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	HasMore      bool           `json:"has_more"`
	Aggregations map[string]int `json:"aggregations,omitempty"`
}

type entityResponse struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type interpretationResponse struct {
	Entities   []entityResponse `json:"entities,omitempty"`
	Confidence float64          `json:"confidence"`
}

type analyzeResponse struct {
	Provider       string                  `json:"provider"`
	Capability     string                  `json:"capability"`
	Tags           []tagResponse           `json:"tags,omitempty"`
	Faces          []faceResponse          `json:"faces,omitempty"`
	Interpretation *interpretationResponse `json:"interpretation,omitempty"`
}

type healthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Providers map[string]string `json:"providers"`
}

// --- Converters ---

func searchResponseFromSet(set result.Set) searchResponse {
	resp := searchResponse{
		Items:        make([]itemResponse, 0, len(set.Items())),
		Total:        set.Total(),
		Page:         set.Page(),
		HasMore:      set.HasMore(),
		Aggregations: set.Aggregations(),
	}

	for _, item := range set.Items() {
		rec := item.Record()
		ir := itemResponse{
			ID:          rec.ID(),
			ContentType: rec.ContentType(),
			CapturedAt:  rec.CapturedAt(),
			Location:    rec.Location(),
			Device:      rec.DeviceInfo(),
			Score:       item.Score(),
		}
		for _, t := range rec.AITags() {
			ir.Tags = append(ir.Tags, tagResponse{Name: t.Name, Confidence: t.Confidence})
		}
		for _, f := range rec.Faces() {
			ir.Faces = append(ir.Faces, faceFromDomain(f))
		}
		if sc := rec.Scene(); sc != nil {
			ir.Scene = &sceneResponse{Label: sc.Label, Confidence: sc.Confidence}
		}
		resp.Items = append(resp.Items, ir)
	}

	return resp
}

func analyzeResponseFromResult(res domain.AnalysisResult) analyzeResponse {
	resp := analyzeResponse{
		Provider:   res.Provider,
		Capability: string(res.Capability),
	}

	if img := res.Image; img != nil {
		for _, t := range img.Tags {
			resp.Tags = append(resp.Tags, tagResponse{Name: t.Name, Confidence: t.Confidence})
		}
		for _, f := range img.Faces {
			resp.Faces = append(resp.Faces, faceFromDomain(f))
		}
	}

	if q := res.Query; q != nil {
		ir := &interpretationResponse{Confidence: q.Confidence}
		for _, e := range q.Entities {
			ir.Entities = append(ir.Entities, entityResponse{Name: e.Name, Confidence: e.Confidence})
		}
		resp.Interpretation = ir
	}

	return resp
}

func faceFromDomain(f domain.Face) faceResponse {
	return faceResponse{
		Left:       f.Region.Left,
		Top:        f.Region.Top,
		Width:      f.Region.Width,
		Height:     f.Region.Height,
		Confidence: f.Confidence,
		PersonID:   f.PersonID,
	}
}

func healthResponseFromReport(r health.Report) healthResponse {
	providers := make(map[string]string, len(r.Providers))
	for k, v := range r.Providers {
		providers[k] = string(v)
	}
	return healthResponse{Status: string(r.Status), Checks: r.Checks, Providers: providers}
}
