package domain

import (
	"fmt"
	"time"
)

// Capability is a specific AI analysis operation kind.
type Capability string

const (
	// CapabilityImageAnalysis is scene/object tagging of an image.
	CapabilityImageAnalysis Capability = "image_analysis"
	// CapabilityFaceDetection is face detection with bounding regions.
	CapabilityFaceDetection Capability = "face_detection"
	// CapabilityQueryInterpretation turns free-text queries into structured filters.
	CapabilityQueryInterpretation Capability = "query_interpretation"
)

// IsValid reports whether the capability is a known kind.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityImageAnalysis, CapabilityFaceDetection, CapabilityQueryInterpretation:
		return true
	}
	return false
}

// AnalysisRequest is an ephemeral per-call analysis request.
type AnalysisRequest struct {
	capability Capability
	image      []byte
	text       string
	preferred  string
	params     map[string]string
}

// NewImageRequest creates an analysis request over binary image data.
// Valid for image analysis and face detection capabilities.
func NewImageRequest(cap Capability, image []byte, preferred string) (AnalysisRequest, error) {
	if cap != CapabilityImageAnalysis && cap != CapabilityFaceDetection {
		return AnalysisRequest{}, fmt.Errorf("%w: capability %q does not accept image input", ErrValidation, cap)
	}
	if len(image) == 0 {
		return AnalysisRequest{}, fmt.Errorf("%w: image data is required", ErrValidation)
	}
	return AnalysisRequest{capability: cap, image: image, preferred: preferred}, nil
}

// NewInterpretationRequest creates a query interpretation request over free text.
func NewInterpretationRequest(text, preferred string) (AnalysisRequest, error) {
	if text == "" {
		return AnalysisRequest{}, fmt.Errorf("%w: query text is required", ErrValidation)
	}
	return AnalysisRequest{capability: CapabilityQueryInterpretation, text: text, preferred: preferred}, nil
}

// WithParams attaches capability-specific parameters.
func (r AnalysisRequest) WithParams(params map[string]string) AnalysisRequest {
	r.params = params
	return r
}

// Capability returns the requested operation kind.
func (r *AnalysisRequest) Capability() Capability { return r.capability }

// Image returns the binary image payload (nil for interpretation requests).
func (r *AnalysisRequest) Image() []byte { return r.image }

// Text returns the free-text payload (empty for image requests).
func (r *AnalysisRequest) Text() string { return r.text }

// Preferred returns the preferred provider kind, empty when none.
func (r *AnalysisRequest) Preferred() string { return r.preferred }

// Params returns capability-specific parameters.
func (r *AnalysisRequest) Params() map[string]string { return r.params }

// ProviderStatus is a provider's self-reported state from a status probe.
type ProviderStatus struct {
	Degraded bool
	Detail   string
}

// Tag is a scene/object label with a confidence score.
type Tag struct {
	Name       string
	Confidence float64
}

// BoundingRegion is a normalized rectangle within an image, values in [0,1].
type BoundingRegion struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Face is a detected face with its bounding region.
type Face struct {
	Region     BoundingRegion
	Confidence float64
	PersonID   string
}

// Entity is a concept extracted from free-text query interpretation.
type Entity struct {
	Name       string
	Confidence float64
}

// InferredFilters are structured filters derived from free text by a provider.
type InferredFilters struct {
	DateFrom    *time.Time
	DateTo      *time.Time
	ContentType string
	People      []string
}

// Interpretation is a structured query interpretation result.
type Interpretation struct {
	Entities   []Entity
	Filters    InferredFilters
	Confidence float64
}

// ImageAnalysis is a structured image or face analysis result.
type ImageAnalysis struct {
	Tags       []Tag
	Faces      []Face
	Confidence float64
}

// AnalysisResult is the polymorphic outcome of an analysis operation.
// Exactly one of Image or Query is populated depending on the capability.
type AnalysisResult struct {
	Provider   string
	Capability Capability
	Image      *ImageAnalysis
	Query      *Interpretation
}

// Confidence returns the overall confidence of the result, in [0,1].
func (r AnalysisResult) Confidence() float64 {
	switch {
	case r.Query != nil:
		return r.Query.Confidence
	case r.Image != nil:
		return r.Image.Confidence
	}
	return 0
}
