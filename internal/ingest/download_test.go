package ingest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"
)

func TestCheckScheme(t *testing.T) {
	tests := []struct {
		name          string
		rawURL        string
		allowInsecure bool
		wantErr       bool
	}{
		{"https always allowed", "https://cdn.example.com/video.mp4", false, false},
		{"plain http rejected by default", "http://cdn.example.com/video.mp4", false, true},
		{"http allowed to loopback when configured", "http://127.0.0.1:9000/video.mp4", true, false},
		{"http to non-loopback still rejected", "http://cdn.example.com/video.mp4", true, true},
		{"unknown scheme rejected", "ftp://cdn.example.com/video.mp4", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ing := &Ingestor{allowInsecure: tt.allowInsecure}
			u, err := url.Parse(tt.rawURL)
			if err != nil {
				t.Fatalf("unexpected parse error: %v", err)
			}
			err = ing.checkScheme(u)
			if tt.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestIsLoopbackHost(t *testing.T) {
	for host, want := range map[string]bool{
		"localhost": true, "127.0.0.1": true, "::1": true, "example.com": false, "10.0.0.1": false,
	} {
		if got := isLoopbackHost(host); got != want {
			t.Errorf("isLoopbackHost(%q) = %v, want %v", host, got, want)
		}
	}
}

func TestIngestRejectsOversizedDeclaredSize(t *testing.T) {
	scratch := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 32))
	}))
	defer srv.Close()

	ing := New(Config{ScratchRoot: scratch, AllowInsecure: true})

	_, err := ing.Ingest(t.Context(), RemoteRef{URL: srv.URL, OriginalName: "clip.mp4", Size: MaxAssetBytes + 1}, "source-0")
	if err == nil {
		t.Fatal("expected a size-exceeds-limit error for an oversized declared size")
	}
	if !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected size-exceeds error, got: %v", err)
	}
}

func TestIngestDownloadsIntoScratch(t *testing.T) {
	scratch := t.TempDir()
	body := []byte("fake-video-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	ing := New(Config{ScratchRoot: scratch, AllowInsecure: true})

	asset, err := ing.Ingest(t.Context(), RemoteRef{URL: srv.URL, OriginalName: "clip.mp4"}, "source-0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.OriginalName != "clip.mp4" {
		t.Errorf("expected original name preserved, got %q", asset.OriginalName)
	}
	got, err := os.ReadFile(asset.ScratchPath)
	if err != nil {
		t.Fatalf("expected scratch file to exist: %v", err)
	}
	if string(got) != string(body) {
		t.Errorf("expected scratch file contents to match response body")
	}
}

func TestIngestRejectsNonHTTPSByDefault(t *testing.T) {
	scratch := t.TempDir()
	ing := New(Config{ScratchRoot: scratch})

	_, err := ing.Ingest(t.Context(), RemoteRef{URL: "http://cdn.example.com/video.mp4"}, "source-0")
	if err == nil {
		t.Fatal("expected an error for a plain-http url without AllowInsecure")
	}
}
