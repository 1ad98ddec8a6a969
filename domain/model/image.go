package model

// ImageReference is one candidate image for a publish attempt. Position is the
// zero-based submission order and must be preserved end-to-end so the platform
// listing shows images in the order the vendor supplied them.
type ImageReference struct {
	SourceURL string `json:"source_url"`
	Position  int    `json:"position"`
}

// Upload outcome states.
const (
	OutcomeUploaded = "uploaded"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// UploadOutcome is the per-image result of a staged upload. Exactly one of
// ResourceURL (uploaded), Reason (skipped) or Err (failed) carries detail.
type UploadOutcome struct {
	Ref         ImageReference `json:"ref"`
	State       string         `json:"state"`
	ResourceURL string         `json:"resource_url,omitempty"`
	Reason      string         `json:"reason,omitempty"`
	Err         error          `json:"-"`
}

func UploadedOutcome(ref ImageReference, resourceURL string) UploadOutcome {
	return UploadOutcome{Ref: ref, State: OutcomeUploaded, ResourceURL: resourceURL}
}

func SkippedOutcome(ref ImageReference, reason string) UploadOutcome {
	return UploadOutcome{Ref: ref, State: OutcomeSkipped, Reason: reason}
}

func FailedOutcome(ref ImageReference, err error) UploadOutcome {
	return UploadOutcome{Ref: ref, State: OutcomeFailed, Err: err}
}
