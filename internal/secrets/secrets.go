// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory is one secret: the filename is the key and the
// trimmed file contents are the value.
//
// Known keys: pdf-password (opens encrypted PDFs).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// DefaultDir is the secrets directory read at startup.
const DefaultDir = ".secrets/"

// PDFPassword is the key of the user/owner password for encrypted PDFs.
const PDFPassword = "pdf-password"

// envPrefix lets a secret be supplied through the environment instead:
// QUIZPDF_SECRET_PDF_PASSWORD overrides the pdf-password file.
const envPrefix = "QUIZPDF_SECRET_"

// Secrets maps key names to values.
type Secrets map[string]string

// Get returns the value for key. An environment override wins over the
// file contents.
func (s Secrets) Get(key string) string {
	env := envPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v
	}
	return s[key]
}

// Keys returns the loaded key names, sorted.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged as warnings and skipped.
func Load(dir string, log *zap.Logger) (Secrets, error) {
	if log == nil {
		log = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn("could not read secret", zap.String("key", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	if len(secrets) > 0 {
		log.Debug("loaded secrets", zap.Strings("keys", secrets.Keys()))
	}
	return secrets, nil
}
