package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"llamad/internal/common/fsutil"
	"llamad/pkg/types"
)

// HTTPFetcher downloads artifacts over plain HTTP(S) from a mirror laid out
// as <base>/<source-id>/<artifact>.
type HTTPFetcher struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// NewHTTP builds a fetcher against the given mirror base URL.
func NewHTTP(baseURL string, log zerolog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 0}, // long transfers; cancellation via ctx
		log:    log,
	}
}

// Download fetches each required artifact in order. Partial files are written
// to a .part name and renamed only when complete, so presence probes never
// see a truncated artifact.
func (f *HTTPFetcher) Download(ctx context.Context, desc types.Descriptor, onProgress ProgressFunc) error {
	if err := os.MkdirAll(desc.LocalPath, 0o755); err != nil {
		return fmt.Errorf("models dir: %w", err)
	}
	total := len(desc.Artifacts)
	for i, name := range desc.Artifacts {
		dst := filepath.Join(desc.LocalPath, name)
		if fsutil.PathExists(dst) {
			f.report(onProgress, i+1, total, 0)
			continue
		}
		start := time.Now()
		if err := f.fetchOne(ctx, desc.SourceID, name, dst, func(frac float64) {
			f.report(onProgress, i, total, frac)
		}); err != nil {
			return fmt.Errorf("artifact %s: %w", name, err)
		}
		f.log.Info().Str("model", desc.Name).Str("artifact", name).
			Dur("dur", time.Since(start)).Msg("artifact downloaded")
	}
	f.report(onProgress, total, total, 0)
	return nil
}

// IsDownloaded reports whether every required artifact exists on disk.
func (f *HTTPFetcher) IsDownloaded(desc types.Descriptor) bool {
	return f.Progress(desc) >= 100
}

// Progress is the fraction of required artifacts present, in [0,100].
func (f *HTTPFetcher) Progress(desc types.Descriptor) float64 {
	if len(desc.Artifacts) == 0 {
		return 0
	}
	present := fsutil.CountPresent(desc.LocalPath, desc.Artifacts)
	return float64(present) / float64(len(desc.Artifacts)) * 100
}

func (f *HTTPFetcher) fetchOne(ctx context.Context, sourceID, name, dst string, onFrac func(float64)) error {
	// SourceID may contain slashes (org/name); escape each segment on its own.
	segs := strings.Split(sourceID, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	u := f.base + "/" + strings.Join(segs, "/") + "/" + url.PathEscape(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
	}
	part := dst + ".part"
	out, err := os.Create(part)
	if err != nil {
		return err
	}
	var written int64
	buf := make([]byte, 256*1024)
	for {
		n, rerr := resp.Body.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				out.Close()
				os.Remove(part)
				return werr
			}
			written += int64(n)
			if resp.ContentLength > 0 && onFrac != nil {
				onFrac(float64(written) / float64(resp.ContentLength))
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			out.Close()
			os.Remove(part)
			return rerr
		}
	}
	if err := out.Close(); err != nil {
		os.Remove(part)
		return err
	}
	return os.Rename(part, dst)
}

// report converts (complete artifacts + fraction of the current one) into an
// overall percentage.
func (f *HTTPFetcher) report(onProgress ProgressFunc, done, total int, frac float64) {
	if onProgress == nil || total == 0 {
		return
	}
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	pct := (float64(done) + frac) / float64(total) * 100
	if done >= total {
		pct = 100
	}
	onProgress(pct)
}
