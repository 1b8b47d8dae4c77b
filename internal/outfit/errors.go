package outfit

import (
	"errors"
	"fmt"

	"github.com/ironsheep/outfit-analyzer/internal/imaging"
)

// Error kinds returned by Analyze. Test with errors.Is.
var (
	// ErrDecode means the image bytes could not be decoded or normalized.
	ErrDecode = imaging.ErrDecode

	// ErrFeatureExtraction means color, style or category extraction failed.
	ErrFeatureExtraction = errors.New("feature extraction failed")
)

// Analysis stages reported in AnalysisError.
const (
	StageDecode   = "decode"
	StageColors   = "colors"
	StageStyle    = "style"
	StageCategory = "category"
)

// AnalysisError is a fatal analysis failure. It unwraps to both its kind
// (ErrDecode or ErrFeatureExtraction) and the underlying cause.
type AnalysisError struct {
	Stage string
	Kind  error
	Err   error
}

func (e *AnalysisError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *AnalysisError) Unwrap() []error {
	errs := make([]error, 0, 2)
	for _, err := range []error{e.Kind, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func decodeError(err error) error {
	return &AnalysisError{Stage: StageDecode, Kind: ErrDecode, Err: err}
}

func extractionError(stage string, err error) error {
	return &AnalysisError{Stage: stage, Kind: ErrFeatureExtraction, Err: err}
}
