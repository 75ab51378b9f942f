package render

import "reelforge/internal/pkg/errors"

// Render error kinds, all mapped to errors.CodeInternal for HTTP purposes —
// a failed render always surfaces as a failed job, never a 4xx.
const (
	KindMissingBinary  = "MissingBinary"
	KindPipelineFailed = "PipelineFailed"
	KindIOFailure      = "IOFailure"
)

func errMissingBinary(bin string) *errors.Error {
	return errors.New(errors.CodeInternal, "media tool binary not found").
		WithField("kind", KindMissingBinary).
		WithField("binary", bin)
}

func errPipelineFailed(cause error, stderrTail string) *errors.Error {
	return errors.WrapWithCode(cause, errors.CodeInternal, "render.render", "media pipeline failed").
		WithField("kind", KindPipelineFailed).
		WithField("stderr", stderrTail)
}

func errIOFailure(cause error, path string) *errors.Error {
	return errors.WrapWithCode(cause, errors.CodeInternal, "render.render", "failed to access media file").
		WithField("kind", KindIOFailure).
		WithField("path", path)
}
