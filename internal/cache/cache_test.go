package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyIsDeterministic(t *testing.T) {
	a := Key("adr", "fp1", "03/2025", "Superior")
	b := Key("adr", "fp1", "03/2025", "Superior")
	require.Equal(t, a, b)
	require.Contains(t, a, "analysis:adr:")
}

func TestKeyDiscriminatesParts(t *testing.T) {
	base := Key("adr", "fp1", "03/2025", "Superior")
	require.NotEqual(t, base, Key("adr", "fp2", "03/2025", "Superior"))
	require.NotEqual(t, base, Key("adr", "fp1", "04/2025", "Superior"))
	require.NotEqual(t, base, Key("occupancy", "fp1", "03/2025", "Superior"))
}

func TestFingerprintChangesWhenSourceChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	fp1, err := Fingerprint(path)
	require.NoError(t, err)

	// A rewritten snapshot with different content has a different size,
	// so the fingerprint moves even when mtime resolution is coarse.
	require.NoError(t, os.WriteFile(path, []byte("v2 longer"), 0644))
	fp2, err := Fingerprint(path)
	require.NoError(t, err)

	require.NotEqual(t, fp1, fp2)
	require.NotEqual(t, Key("adr", fp1), Key("adr", fp2))
}

func TestFingerprintMissingFile(t *testing.T) {
	_, err := Fingerprint(filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
}

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type payload struct {
		Name  string   `json:"name"`
		Rates []string `json:"rates"`
	}

	ok, err := c.Get(ctx, "k", &payload{})
	require.NoError(t, err)
	require.False(t, ok)

	in := payload{Name: "superior", Rates: []string{"a", "b"}}
	require.NoError(t, c.Set(ctx, "k", in))

	var out payload
	ok, err = c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, in, out)
}
