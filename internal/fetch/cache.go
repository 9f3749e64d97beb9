package fetch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// CachePath returns where the rustdoc JSON for name@version is cached.
func CachePath(dir, name, version string) string {
	return filepath.Join(dir, name+"_"+version+".json.zst")
}

// SaveCache zstd-compresses data into the cache. The file is written under
// a temporary name and renamed, so concurrent readers never see a partial
// entry.
func SaveCache(dir string, data []byte, name, version string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating json cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, name+"_*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := compressTo(tmp, data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), CachePath(dir, name, version)); err != nil {
		return fmt.Errorf("publishing cache file: %w", err)
	}
	return nil
}

func compressTo(w io.Writer, data []byte) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return fmt.Errorf("creating zstd writer: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("compressing rustdoc JSON: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flushing zstd stream: %w", err)
	}
	return nil
}

// LoadCache loads and decompresses cached rustdoc JSON.
func LoadCache(dir, name, version string) ([]byte, error) {
	f, err := os.Open(CachePath(dir, name, version))
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}
	defer f.Close()

	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("creating zstd reader: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompressing cached rustdoc JSON: %w", err)
	}
	return data, nil
}

// HasCache reports whether rustdoc JSON for name@version is cached.
func HasCache(dir, name, version string) bool {
	_, err := os.Stat(CachePath(dir, name, version))
	return err == nil
}
