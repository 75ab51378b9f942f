package ingest

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"reelforge/internal/idgen"
	"reelforge/internal/pkg/logger"
)

// MaxAssetBytes caps the declared and actually-read size of any ingested asset.
const MaxAssetBytes = 2 << 30 // 2 GiB

// Ingestor downloads remote media into scratch storage and probes templates.
type Ingestor struct {
	scratchRoot   string
	allowInsecure bool
	probeBin      string
	httpClient    *http.Client
	log           *logger.Logger
}

// Config configures an Ingestor.
type Config struct {
	ScratchRoot   string
	AllowInsecure bool // allow plain HTTP to loopback hosts, for local development
	ProbeBin      string
	Log           *logger.Logger
}

func New(cfg Config) *Ingestor {
	log := cfg.Log
	if log == nil {
		log = logger.NewDefault()
	}
	return &Ingestor{
		scratchRoot:   cfg.ScratchRoot,
		allowInsecure: cfg.AllowInsecure,
		probeBin:      cfg.ProbeBin,
		httpClient:    &http.Client{Timeout: 10 * time.Minute},
		log:           log.WithComponent("ingestor"),
	}
}

// Ingest downloads ref into scratch storage under a collision-resistant name
// derived from label, enforcing scheme and size policy.
func (ing *Ingestor) Ingest(ctx context.Context, ref RemoteRef, label string) (LocalAsset, error) {
	log := ing.log.FromContext(ctx)

	u, err := url.Parse(strings.TrimSpace(ref.URL))
	if err != nil || u.Host == "" {
		return LocalAsset{}, errInvalidURL(ref.URL, err)
	}

	if err := ing.checkScheme(u); err != nil {
		return LocalAsset{}, err
	}

	if ref.Size > 0 && ref.Size > MaxAssetBytes {
		return LocalAsset{}, errSizeExceedsLimit(ref.Size, MaxAssetBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return LocalAsset{}, errRemoteFetchFailed(err, 0)
	}

	resp, err := ing.httpClient.Do(req)
	if err != nil {
		return LocalAsset{}, errRemoteFetchFailed(err, 0)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return LocalAsset{}, errRemoteFetchFailed(nil, resp.StatusCode)
	}

	scratchName := idgen.NewScratchName(label, filepath.Ext(ref.OriginalName))
	dst := filepath.Join(ing.scratchRoot, scratchName)

	if err := os.MkdirAll(ing.scratchRoot, 0o755); err != nil {
		return LocalAsset{}, errWriteFailed(err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return LocalAsset{}, errWriteFailed(err)
	}
	defer f.Close()

	limited := io.LimitReader(resp.Body, MaxAssetBytes+1)
	n, err := io.Copy(f, limited)
	if err != nil {
		_ = os.Remove(dst)
		return LocalAsset{}, errWriteFailed(err)
	}
	if n > MaxAssetBytes {
		_ = os.Remove(dst)
		return LocalAsset{}, errSizeExceedsLimit(n, MaxAssetBytes)
	}

	log.Debug("ingested asset", "label", label, "scratchPath", dst, "bytes", n)

	return LocalAsset{ScratchPath: dst, OriginalName: ref.OriginalName}, nil
}

func (ing *Ingestor) checkScheme(u *url.URL) error {
	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if ing.allowInsecure && isLoopbackHost(u.Hostname()) {
			return nil
		}
		return errProtocolNotAllowed(u.Scheme)
	default:
		return errProtocolNotAllowed(u.Scheme)
	}
}

func isLoopbackHost(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
