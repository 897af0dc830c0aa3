package querycache

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/soycharroup/memoryreel/internal/domain"
	"github.com/soycharroup/memoryreel/internal/domain/content"
	"github.com/soycharroup/memoryreel/internal/domain/search/result"
)

// Wire shapes for the cached result set.

type tagDTO struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type faceDTO struct {
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	PersonID   string  `json:"person_id,omitempty"`
}

type sceneDTO struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

type itemDTO struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	CapturedAt  time.Time `json:"captured_at"`
	Location    string    `json:"location,omitempty"`
	DeviceInfo  string    `json:"device_info,omitempty"`
	Tags        []tagDTO  `json:"tags,omitempty"`
	Faces       []faceDTO `json:"faces,omitempty"`
	Scene       *sceneDTO `json:"scene,omitempty"`
	Score       float64   `json:"score"`
}

type setDTO struct {
	Items        []itemDTO      `json:"items"`
	Total        int            `json:"total"`
	Page         int            `json:"page"`
	Aggregations map[string]int `json:"aggregations,omitempty"`
}

func encodeSet(set result.Set) ([]byte, error) {
	dto := setDTO{
		Total:        set.Total(),
		Page:         set.Page(),
		Aggregations: set.Aggregations(),
		Items:        make([]itemDTO, 0, len(set.Items())),
	}

	for _, item := range set.Items() {
		rec := item.Record()

		it := itemDTO{
			ID:          rec.ID(),
			ContentType: rec.ContentType(),
			CapturedAt:  rec.CapturedAt(),
			Location:    rec.Location(),
			DeviceInfo:  rec.DeviceInfo(),
			Score:       item.Score(),
		}
		for _, t := range rec.AITags() {
			it.Tags = append(it.Tags, tagDTO{Name: t.Name, Confidence: t.Confidence})
		}
		for _, f := range rec.Faces() {
			it.Faces = append(it.Faces, faceDTO{
				Left: f.Region.Left, Top: f.Region.Top,
				Width: f.Region.Width, Height: f.Region.Height,
				Confidence: f.Confidence, PersonID: f.PersonID,
			})
		}
		if sc := rec.Scene(); sc != nil {
			it.Scene = &sceneDTO{Label: sc.Label, Confidence: sc.Confidence}
		}

		dto.Items = append(dto.Items, it)
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("marshal result set: %w", err)
	}
	return data, nil
}

func decodeSet(data []byte, pageSize int) (result.Set, error) {
	var dto setDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return result.Set{}, fmt.Errorf("unmarshal result set: %w", err)
	}

	items := make([]result.Item, 0, len(dto.Items))
	for _, it := range dto.Items {
		tags := make([]domain.Tag, 0, len(it.Tags))
		for _, t := range it.Tags {
			tags = append(tags, domain.Tag{Name: t.Name, Confidence: t.Confidence})
		}
		faces := make([]domain.Face, 0, len(it.Faces))
		for _, f := range it.Faces {
			faces = append(faces, domain.Face{
				Region: domain.BoundingRegion{
					Left: f.Left, Top: f.Top, Width: f.Width, Height: f.Height,
				},
				Confidence: f.Confidence,
				PersonID:   f.PersonID,
			})
		}
		var scene *content.SceneClassification
		if it.Scene != nil {
			scene = &content.SceneClassification{Label: it.Scene.Label, Confidence: it.Scene.Confidence}
		}

		rec := content.Reconstruct(
			it.ID, it.ContentType, it.CapturedAt,
			it.Location, it.DeviceInfo, tags, faces, scene,
		)
		items = append(items, result.NewItem(rec, it.Score))
	}

	return result.NewSet(items, dto.Total, dto.Page, pageSize, dto.Aggregations), nil
}
