package pixelart

import (
	"errors"
	"fmt"

	"github.com/ironsheep/pixelart-mcp/internal/artifact"
	pximaging "github.com/ironsheep/pixelart-mcp/internal/imaging"
)

var (
	// ErrDecode reports input that cannot be parsed as an image.
	ErrDecode = pximaging.ErrDecode

	// ErrInvalidSettings reports out-of-range settings or an empty palette.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrInvalidColorFormat reports a palette entry that is not 6-digit hex.
	ErrInvalidColorFormat = errors.New("invalid color format")

	// ErrPaletteApplication reports a fault during quantization. The Engine
	// recovers from it by keeping the pixelated raster.
	ErrPaletteApplication = errors.New("palette application error")

	// ErrStorageWrite reports an encoding or file write failure.
	ErrStorageWrite = artifact.ErrStorageWrite
)

// Stage names a step of the conversion pipeline.
type Stage string

const (
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
	StageTone     Stage = "tone"
	StagePixelate Stage = "pixelate"
	StageQuantize Stage = "quantize"
	StageWrite    Stage = "write"
)

// StageError is returned for fatal conversion failures. It records which stage
// failed and wraps the underlying error, so callers can use errors.Is with the
// package sentinels.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("pixelart %s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
