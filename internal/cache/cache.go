// Package cache memoizes pipeline results. Keys embed a fingerprint of the
// source files, so a replaced ledger snapshot never serves stale results:
// the old entries simply stop being addressed and age out.
package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

// AnalysisCache stores computed analysis payloads as JSON-marshalable values.
type AnalysisCache interface {
	// Get unmarshals the cached payload for key into dst and reports
	// whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	// Set stores val under key.
	Set(ctx context.Context, key string, val any) error
}

// Fingerprint identifies the current content of a source file by path,
// modification time and size. A rewritten file yields a different
// fingerprint and therefore different cache keys.
func Fingerprint(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%s|%d|%d", path, info.ModTime().UnixNano(), info.Size()), nil
}

// Key builds a cache key from an operation name and its discriminating
// parts (source fingerprints plus canonical request parameters).
func Key(op string, parts ...string) string {
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return fmt.Sprintf("analysis:%s:%s", op, hex.EncodeToString(sum[:]))
}
