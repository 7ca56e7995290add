package media

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeInline(t *testing.T) {
	raw := []byte("fake video bytes")
	b64 := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name    string
		payload string
		want    []byte
		wantErr bool
	}{
		{"bare base64", b64, raw, false},
		{"data URL", "data:video/mp4;base64," + b64, raw, false},
		{"data URL without comma", "data:video/mp4;base64", nil, true},
		{"garbage", "!!not base64!!", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeInline(tt.payload)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAcquireSourceInline(t *testing.T) {
	raw := []byte("mp4 payload")
	b64 := base64.StdEncoding.EncodeToString(raw)

	dir, path, err := AcquireSource(context.Background(), b64, "", t.TempDir())
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestAcquireSourceURL(t *testing.T) {
	raw := []byte("remote clip")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	dir, path, err := AcquireSource(context.Background(), "", srv.URL, t.TempDir())
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestAcquireSourceInlineWinsOverURL(t *testing.T) {
	raw := []byte("inline wins")
	b64 := base64.StdEncoding.EncodeToString(raw)

	var fetched bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = true
	}))
	defer srv.Close()

	dir, path, err := AcquireSource(context.Background(), b64, srv.URL, t.TempDir())
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
	assert.False(t, fetched)
}

func TestAcquireSourceMalformedInlineFallsBackToURL(t *testing.T) {
	raw := []byte("fallback clip")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(raw)
	}))
	defer srv.Close()

	dir, path, err := AcquireSource(context.Background(), "!!garbage!!", srv.URL, t.TempDir())
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestAcquireSourceNoSource(t *testing.T) {
	_, _, err := AcquireSource(context.Background(), "", "", t.TempDir())
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestAcquireSourceFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tmp := t.TempDir()
	_, _, err := AcquireSource(context.Background(), "", srv.URL, tmp)
	assert.ErrorIs(t, err, ErrSourceFetch)

	// The scratch dir must not leak on failure.
	entries, readErr := os.ReadDir(tmp)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
