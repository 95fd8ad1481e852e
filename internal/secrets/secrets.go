// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads NCBI credentials from a directory of plain-text files
// and from the environment. Each file in the directory represents one
// secret: the filename is the key name and the file contents (trimmed) are
// the value.
//
// Supported key files: ncbi-email, ncbi-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/pdiddy/pubmed-tool/internal/diag"
	"github.com/pdiddy/pubmed-tool/pkg/types"
)

// Key file names and their environment fallbacks.
const (
	EmailFile  = "ncbi-email"
	APIKeyFile = "ncbi-api-key"

	EmailEnv  = "NCBI_EMAIL"
	APIKeyEnv = "NCBI_API_KEY"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are reported to log and skipped.
func Load(dir string, log diag.Sink) (map[string]string, error) {
	if log == nil {
		log = diag.Nop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		name := entry.Name()

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", "name", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[name] = value
		}
	}
	return secrets, nil
}

// LoadEnv reads KEY=VALUE pairs from the given .env files into the process
// environment without overriding variables already set. Missing files are
// ignored.
func LoadEnv(files ...string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Apply fills empty credential fields of cfg, first from the secrets
// directory and then from the environment. Values already set in cfg win.
func Apply(cfg *types.EutilsConfig, dir string, log diag.Sink) error {
	s, err := Load(dir, log)
	if err != nil {
		return err
	}
	if cfg.Email == "" {
		cfg.Email = first(s[EmailFile], os.Getenv(EmailEnv))
	}
	if cfg.APIKey == "" {
		cfg.APIKey = first(s[APIKeyFile], os.Getenv(APIKeyEnv))
	}
	return nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
