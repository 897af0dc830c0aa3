package openai

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/soycharroup/memoryreel/internal/domain"
)

// Wire shapes of the model's JSON answers.

type interpretationDTO struct {
	Entities []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"entities"`
	Filters struct {
		DateFrom    string   `json:"date_from"`
		DateTo      string   `json:"date_to"`
		ContentType string   `json:"content_type"`
		People      []string `json:"people"`
	} `json:"filters"`
	Confidence float64 `json:"confidence"`
}

type imageAnalysisDTO struct {
	Tags []struct {
		Name       string  `json:"name"`
		Confidence float64 `json:"confidence"`
	} `json:"tags"`
	Faces []struct {
		Left       float64 `json:"left"`
		Top        float64 `json:"top"`
		Width      float64 `json:"width"`
		Height     float64 `json:"height"`
		Confidence float64 `json:"confidence"`
	} `json:"faces"`
	Confidence float64 `json:"confidence"`
}

func parseInterpretation(body string) (*domain.Interpretation, error) {
	var dto interpretationDTO
	if err := json.Unmarshal([]byte(body), &dto); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if dto.Confidence < 0 || dto.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0,1]", dto.Confidence)
	}

	interp := &domain.Interpretation{Confidence: dto.Confidence}
	for _, e := range dto.Entities {
		interp.Entities = append(interp.Entities, domain.Entity{
			Name:       e.Name,
			Confidence: clamp01(e.Confidence),
		})
	}

	interp.Filters = domain.InferredFilters{
		ContentType: dto.Filters.ContentType,
		People:      dto.Filters.People,
	}
	if t, err := time.Parse(time.RFC3339, dto.Filters.DateFrom); err == nil {
		interp.Filters.DateFrom = &t
	}
	if t, err := time.Parse(time.RFC3339, dto.Filters.DateTo); err == nil {
		interp.Filters.DateTo = &t
	}

	return interp, nil
}

func parseImageAnalysis(body string) (*domain.ImageAnalysis, error) {
	var dto imageAnalysisDTO
	if err := json.Unmarshal([]byte(body), &dto); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	if dto.Confidence < 0 || dto.Confidence > 1 {
		return nil, fmt.Errorf("confidence %v outside [0,1]", dto.Confidence)
	}

	img := &domain.ImageAnalysis{Confidence: dto.Confidence}
	for _, t := range dto.Tags {
		img.Tags = append(img.Tags, domain.Tag{Name: t.Name, Confidence: clamp01(t.Confidence)})
	}
	for _, f := range dto.Faces {
		img.Faces = append(img.Faces, domain.Face{
			Region: domain.BoundingRegion{
				Left: f.Left, Top: f.Top, Width: f.Width, Height: f.Height,
			},
			Confidence: clamp01(f.Confidence),
		})
	}

	return img, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
