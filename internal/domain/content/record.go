// Package content defines the media content record read by the search layer.
package content

import (
	"time"

	"github.com/soycharroup/memoryreel/internal/domain"
)

// SceneClassification is the dominant scene label of a media item.
type SceneClassification struct {
	Label      string
	Confidence float64
}

// Record is a single media item as seen by search and ranking.
// Constructed by the content repository from stored metadata; immutable.
type Record struct {
	id          string
	contentType string
	capturedAt  time.Time
	location    string
	deviceInfo  string
	aiTags      []domain.Tag
	faces       []domain.Face
	scene       *SceneClassification
}

// Reconstruct rebuilds a Record from stored fields without validation.
func Reconstruct(
	id, contentType string, capturedAt time.Time,
	location, deviceInfo string,
	aiTags []domain.Tag, faces []domain.Face,
	scene *SceneClassification,
) Record {
	return Record{
		id:          id,
		contentType: contentType,
		capturedAt:  capturedAt,
		location:    location,
		deviceInfo:  deviceInfo,
		aiTags:      aiTags,
		faces:       faces,
		scene:       scene,
	}
}

// ID returns the content identifier.
func (r Record) ID() string { return r.id }

// ContentType returns the media type (photo, video).
func (r Record) ContentType() string { return r.contentType }

// CapturedAt returns the capture timestamp.
func (r Record) CapturedAt() time.Time { return r.capturedAt }

// Location returns the capture location, empty when unknown.
func (r Record) Location() string { return r.location }

// DeviceInfo returns the capturing device description, empty when unknown.
func (r Record) DeviceInfo() string { return r.deviceInfo }

// AITags returns the AI-generated scene/object tags.
func (r Record) AITags() []domain.Tag { return r.aiTags }

// Faces returns the detected faces.
func (r Record) Faces() []domain.Face { return r.faces }

// Scene returns the scene classification, nil when absent.
func (r Record) Scene() *SceneClassification { return r.scene }
