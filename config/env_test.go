package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withValues(t *testing.T, m map[string]string) {
	t.Helper()
	mu.Lock()
	prev := values
	values = m
	mu.Unlock()
	t.Cleanup(func() {
		mu.Lock()
		values = prev
		mu.Unlock()
	})
}

func TestLoadFromFilesMergesJSONAndDotEnv(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"mongodb_database":"shop","cart_slots":120}`), 0o644))
	require.NoError(t, os.WriteFile(envPath, []byte("# comment\nJWT_SECRET=\"s3cret\"\nPOPULAR_CATEGORY=women\n"), 0o644))

	for _, k := range []string{"MONGODB_DATABASE", "JWT_SECRET", "POPULAR_CATEGORY", "CART_SLOTS", "PORT"} {
		t.Setenv(k, "")
	}
	withValues(t, defaultValues())
	require.NoError(t, loadFromFiles(jsonPath, envPath))

	assert.Equal(t, "shop", get("MONGODB_DATABASE", ""))
	assert.Equal(t, "s3cret", get("JWT_SECRET", ""))
	assert.Equal(t, "women", get("POPULAR_CATEGORY", ""))
	assert.Equal(t, 120, getInt("CART_SLOTS", defaultCartSlots))
	assert.Equal(t, defaultAppPort, get("PORT", ""))
}

func TestLoadFromFilesToleratesMissingFiles(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MONGODB_URI", "")
	withValues(t, defaultValues())

	err := loadFromFiles(filepath.Join(dir, "nope.json"), filepath.Join(dir, "nope.env"))
	assert.NoError(t, err)
	assert.Equal(t, defaultMongoURI, get("MONGODB_URI", ""))
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	withValues(t, map[string]string{"PORT": "9000"})
	t.Setenv("PORT", "4100")

	assert.Equal(t, "4100", get("PORT", defaultAppPort))
}

func TestGetDuration(t *testing.T) {
	withValues(t, map[string]string{"A": "90s", "B": "45", "C": "soon"})

	assert.Equal(t, 90*time.Second, getDuration("A", time.Minute))
	assert.Equal(t, 45*time.Second, getDuration("B", time.Minute))
	assert.Equal(t, time.Minute, getDuration("C", time.Minute))
	assert.Equal(t, time.Duration(0), getDuration("MISSING", 0))
}

func TestGetIntRejectsNonPositive(t *testing.T) {
	t.Setenv("CART_SLOTS", "")
	withValues(t, map[string]string{"CART_SLOTS": "-3"})
	assert.Equal(t, defaultCartSlots, getInt("CART_SLOTS", defaultCartSlots))
}

func TestTrustedProxiesSplitsList(t *testing.T) {
	t.Setenv("TRUSTED_PROXIES", " 10.0.0.0/8, ,192.168.1.1 ")
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, TrustedProxies())

	t.Setenv("TRUSTED_PROXIES", "")
	withValues(t, defaultValues())
	assert.Empty(t, TrustedProxies())
}
