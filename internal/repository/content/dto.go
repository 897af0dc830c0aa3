package content

import (
	"fmt"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/soycharroup/memoryreel/internal/db"
	"github.com/soycharroup/memoryreel/internal/domain"
	domcontent "github.com/soycharroup/memoryreel/internal/domain/content"
)

// Stored hash field names of a media record.
const (
	fieldContentType = "content_type"
	fieldCapturedAt  = "captured_at"
	fieldLocation    = "location"
	fieldDevice      = "device"
	fieldTags        = "tags"
	fieldFaces       = "faces"
	fieldSceneLabel  = "scene_label"
	fieldSceneConf   = "scene_confidence"
)

type storedTag struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

type storedFace struct {
	Left       float64 `json:"left"`
	Top        float64 `json:"top"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
	PersonID   string  `json:"person_id,omitempty"`
}

// recordFromDoc maps one stored document to a domain content record.
func recordFromDoc(doc db.Document, keyPrefix string) (domcontent.Record, error) {
	fields := doc.Fields

	capturedAtRaw, ok := fields[fieldCapturedAt]
	if !ok {
		return domcontent.Record{}, fmt.Errorf("document %s missing %s", doc.ID, fieldCapturedAt)
	}
	capturedUnix, err := strconv.ParseInt(capturedAtRaw, 10, 64)
	if err != nil {
		return domcontent.Record{}, fmt.Errorf("document %s: parse %s: %w", doc.ID, fieldCapturedAt, err)
	}

	var tags []domain.Tag
	if raw := fields[fieldTags]; raw != "" {
		var stored []storedTag
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return domcontent.Record{}, fmt.Errorf("document %s: parse tags: %w", doc.ID, err)
		}
		for _, t := range stored {
			tags = append(tags, domain.Tag{Name: t.Name, Confidence: t.Confidence})
		}
	}

	var faces []domain.Face
	if raw := fields[fieldFaces]; raw != "" {
		var stored []storedFace
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			return domcontent.Record{}, fmt.Errorf("document %s: parse faces: %w", doc.ID, err)
		}
		for _, f := range stored {
			faces = append(faces, domain.Face{
				Region: domain.BoundingRegion{
					Left: f.Left, Top: f.Top, Width: f.Width, Height: f.Height,
				},
				Confidence: f.Confidence,
				PersonID:   f.PersonID,
			})
		}
	}

	var scene *domcontent.SceneClassification
	if label := fields[fieldSceneLabel]; label != "" {
		conf, _ := strconv.ParseFloat(fields[fieldSceneConf], 64)
		scene = &domcontent.SceneClassification{Label: label, Confidence: conf}
	}

	return domcontent.Reconstruct(
		contentID(doc.ID, keyPrefix),
		fields[fieldContentType],
		time.Unix(capturedUnix, 0).UTC(),
		fields[fieldLocation],
		fields[fieldDevice],
		tags,
		faces,
		scene,
	), nil
}
