package ingest

import (
	"reelforge/internal/pkg/errors"
)

// Ingest error kinds. All of them surface to the HTTP caller as a 500 (they
// occur after the request shape itself has already been validated), so they
// ride on errors.CodeInternal for HTTP mapping and carry the specific kind as
// a field for logging and response detail.
const (
	KindInvalidURL        = "InvalidUrl"
	KindProtocolNotAllowed = "ProtocolNotAllowed"
	KindSizeExceedsLimit  = "SizeExceedsLimit"
	KindRemoteFetchFailed = "RemoteFetchFailed"
	KindWriteFailed       = "WriteFailed"
)

// wrapIngest wraps cause as an ingest error. Unlike errors.WrapWithCode it
// still returns an error when cause is nil (e.g. a non-2xx response).
func wrapIngest(cause error, message string) *errors.Error {
	if cause == nil {
		e := errors.New(errors.CodeInternal, message)
		e.Op = "ingest.ingest"
		return e
	}
	return errors.WrapWithCode(cause, errors.CodeInternal, "ingest.ingest", message)
}

func errInvalidURL(raw string, cause error) *errors.Error {
	return wrapIngest(cause, "invalid source url").
		WithField("kind", KindInvalidURL).
		WithField("url", raw)
}

func errProtocolNotAllowed(scheme string) *errors.Error {
	return errors.New(errors.CodeInternal, "protocol not allowed for source url").
		WithField("kind", KindProtocolNotAllowed).
		WithField("scheme", scheme)
}

func errSizeExceedsLimit(declared, limit int64) *errors.Error {
	return errors.New(errors.CodeInternal, "declared size exceeds ingest limit").
		WithField("kind", KindSizeExceedsLimit).
		WithField("declaredBytes", declared).
		WithField("limitBytes", limit)
}

func errRemoteFetchFailed(cause error, status int) *errors.Error {
	e := wrapIngest(cause, "failed to fetch remote asset").
		WithField("kind", KindRemoteFetchFailed)
	if status != 0 {
		e = e.WithField("status", status)
	}
	return e
}

func errWriteFailed(cause error) *errors.Error {
	return errors.WrapWithCode(cause, errors.CodeInternal, "ingest.ingest", "failed to write scratch file").
		WithField("kind", KindWriteFailed)
}
