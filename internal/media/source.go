// Package media owns the video ingest lifecycle: source acquisition, the
// async transcode pipeline, and creator-facing mutations.
package media

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNoSource means neither an inline payload nor a source URL was usable.
	ErrNoSource = errors.New("no video source provided")
	// ErrSourceFetch means the remote source URL did not yield the bytes.
	ErrSourceFetch = errors.New("failed to fetch video source")
)

const sourceFilename = "source.mp4"

// DecodeInline decodes an inline payload, either a data URL
// (data:<mime>;base64,<payload>) or a bare base64 blob.
func DecodeInline(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		_, b64, ok := strings.Cut(payload, ",")
		if !ok {
			return nil, fmt.Errorf("malformed data URL")
		}
		payload = b64
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode base64 payload: %w", err)
	}
	return data, nil
}

// AcquireSource materializes exactly one video source into a fresh temp
// directory under tmpDir and returns (dir, filePath). The inline payload
// takes precedence over the URL when both are usable. The returned dir is
// the cleanup unit; callers must remove it recursively on every exit path.
func AcquireSource(ctx context.Context, inline, sourceURL, tmpDir string) (string, string, error) {
	if inline == "" && sourceURL == "" {
		return "", "", ErrNoSource
	}

	dir, err := os.MkdirTemp(tmpDir, "ingest-*")
	if err != nil {
		return "", "", fmt.Errorf("create scratch dir: %w", err)
	}
	path := filepath.Join(dir, sourceFilename)

	if inline != "" {
		data, decodeErr := DecodeInline(inline)
		if decodeErr == nil {
			if err := os.WriteFile(path, data, 0o644); err != nil {
				_ = os.RemoveAll(dir)
				return "", "", fmt.Errorf("write source file: %w", err)
			}
			return dir, path, nil
		}
		if sourceURL == "" {
			_ = os.RemoveAll(dir)
			return "", "", decodeErr
		}
		// Fall through to the URL when the inline payload is malformed.
	}

	if err := fetchSource(ctx, sourceURL, path); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", err
	}
	return dir, path, nil
}

func fetchSource(ctx context.Context, sourceURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceFetch, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrSourceFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", ErrSourceFetch, resp.StatusCode)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write source file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceFetch, err)
	}
	return nil
}
