package config

import (
	"fmt"
	"os"

	"github.com/Jospin-M/secure-file-server/internal/fileserver"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config is the process configuration. Values are read from an optional YAML
// file first, then overridden by SFS_* environment variables.
type Config struct {
	ListenAddr    string `yaml:"listen_addr" env:"SFS_LISTEN_ADDR"`
	TLSListenAddr string `yaml:"tls_listen_addr" env:"SFS_TLS_LISTEN_ADDR"`
	TLSCertFile   string `yaml:"tls_cert_file" env:"SFS_TLS_CERT_FILE"`
	TLSKeyFile    string `yaml:"tls_key_file" env:"SFS_TLS_KEY_FILE"`

	UploadRoot    string `yaml:"upload_root" env:"SFS_UPLOAD_ROOT"`
	TokenFile     string `yaml:"token_file" env:"SFS_TOKEN_FILE"`
	OwnershipFile string `yaml:"ownership_file" env:"SFS_OWNERSHIP_FILE"`
	TransferLog   string `yaml:"transfer_log" env:"SFS_TRANSFER_LOG"`

	MaxRequestBytes int64 `yaml:"max_request_bytes" env:"SFS_MAX_REQUEST_BYTES"`
	MaxFileBytes    int64 `yaml:"max_file_bytes" env:"SFS_MAX_FILE_BYTES"`

	Mirror fileserver.MirrorConfig `yaml:"mirror" envPrefix:"SFS_MIRROR_"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		ListenAddr:      ":8080",
		TLSListenAddr:   ":8443",
		UploadRoot:      "uploads",
		TokenFile:       "tokens.txt",
		OwnershipFile:   "ownership.txt",
		TransferLog:     "transfers.sqlite",
		MaxRequestBytes: fileserver.DefaultMaxRequestBytes,
		MaxFileBytes:    fileserver.DefaultMaxFileBytes,
	}
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists), and environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return &cfg, nil
}
