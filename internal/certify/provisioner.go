// Package certify provisions the TLS certificate the server presents.
// It has no HTTP concerns — it only guarantees that a usable PEM
// certificate/key pair exists on disk before the listener starts.
package certify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// File permissions for the certificate material. The key is private;
// the certificate is public by nature.
const (
	dirPerms     = 0700
	keyFilePerms = 0600
	certPerms    = 0644
)

// Ensure guarantees that a certificate/key pair exists under dir at the
// given file names, generating a new pair with gen if either file is
// missing. The check is existence-only: an expired or mismatched pair
// on disk is served as-is, and deleting either file forces a fresh pair
// on the next run. On success both returned paths point at non-empty
// files.
func Ensure(dir, certFile, keyFile string, gen Generator, logger *slog.Logger) (certPath, keyPath string, err error) {
	if err := os.MkdirAll(dir, dirPerms); err != nil {
		return "", "", fmt.Errorf("create certificate directory %s: %w", dir, err)
	}

	certPath = filepath.Join(dir, certFile)
	keyPath = filepath.Join(dir, keyFile)

	if !fileExists(certPath) || !fileExists(keyPath) {
		logger.Info("generating self-signed certificate",
			"commonName", DefaultCommonName,
			"validityDays", DefaultValidityDays,
			"cert", certPath,
			"key", keyPath,
		)

		certPEM, keyPEM, err := gen.Generate(DefaultCommonName, DefaultValidityDays)
		if err != nil {
			return "", "", fmt.Errorf("generate certificate: %w", err)
		}

		if err := writeFileAtomic(keyPath, keyPEM, keyFilePerms); err != nil {
			return "", "", fmt.Errorf("write key: %w", err)
		}
		if err := writeFileAtomic(certPath, certPEM, certPerms); err != nil {
			return "", "", fmt.Errorf("write certificate: %w", err)
		}
	}

	for _, path := range []string{certPath, keyPath} {
		info, err := os.Stat(path)
		if err != nil {
			return "", "", fmt.Errorf("certificate material missing after provisioning: %w", err)
		}
		if info.Size() == 0 {
			return "", "", fmt.Errorf("certificate material empty after provisioning: %s", path)
		}
	}

	return certPath, keyPath, nil
}

// writeFileAtomic writes data to a temporary file then renames it into place.
// This prevents partial writes from corrupting existing files.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename %s -> %s: %w", tmp, path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
