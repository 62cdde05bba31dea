package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Jospin-M/secure-file-server/internal/config"
	"github.com/Jospin-M/secure-file-server/internal/fileserver"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "Load error")

	require.Equal(t, ":8080", cfg.ListenAddr, "listen addr")
	require.Equal(t, "uploads", cfg.UploadRoot, "upload root")
	require.Equal(t, int64(fileserver.DefaultMaxFileBytes), cfg.MaxFileBytes, "max file bytes")
	require.Equal(t, int64(fileserver.DefaultMaxRequestBytes), cfg.MaxRequestBytes, "max request bytes")
	require.False(t, cfg.Mirror.Enabled(), "mirror disabled by default")
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := `
listen_addr: ":9090"
upload_root: /srv/files
token_file: /etc/sfs/tokens.txt
max_file_bytes: 1048576
mirror:
  endpoint: minio:9000
  access_key: ak
  secret_key: sk
  bucket: mirror-bucket
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644), "writing config fixture")

	cfg, err := config.Load(path)
	require.NoError(t, err, "Load error")

	require.Equal(t, ":9090", cfg.ListenAddr, "listen addr")
	require.Equal(t, "/srv/files", cfg.UploadRoot, "upload root")
	require.Equal(t, "/etc/sfs/tokens.txt", cfg.TokenFile, "token file")
	require.Equal(t, int64(1048576), cfg.MaxFileBytes, "max file bytes")
	require.True(t, cfg.Mirror.Enabled(), "mirror enabled")
	require.Equal(t, "mirror-bucket", cfg.Mirror.Bucket, "mirror bucket")

	// Values absent from the file keep their defaults.
	require.Equal(t, "ownership.txt", cfg.OwnershipFile, "ownership file default")
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9090\"\n"), 0o644), "writing config fixture")

	t.Setenv("SFS_LISTEN_ADDR", ":7070")
	t.Setenv("SFS_MAX_FILE_BYTES", "2048")
	t.Setenv("SFS_MIRROR_ENDPOINT", "minio:9000")

	cfg, err := config.Load(path)
	require.NoError(t, err, "Load error")

	require.Equal(t, ":7070", cfg.ListenAddr, "environment beats the file")
	require.Equal(t, int64(2048), cfg.MaxFileBytes, "max file bytes override")
	require.Equal(t, "minio:9000", cfg.Mirror.Endpoint, "nested mirror override")

	require.Equal(t, "uploads", cfg.UploadRoot, "untouched values keep defaults")
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr: [unclosed"), 0o644), "writing config fixture")

	_, err := config.Load(path)
	require.Error(t, err, "malformed YAML must fail")
}
