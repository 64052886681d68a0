// Package server implements the HTTPS static file server with
// cross-origin isolation headers on every response.
package server

// Config holds the configuration for the server. It is constructed once
// at process entry and threaded through; nothing reads ambient globals.
type Config struct {
	// CertDir is the directory where certificate material is stored.
	// Created on first run if it does not exist.
	CertDir string

	// CertFile is the certificate file name inside CertDir.
	CertFile string

	// KeyFile is the private key file name inside CertDir.
	KeyFile string

	// Port is the TCP port to listen on, on all interfaces.
	Port int

	// DocRoot is the directory to serve. Empty means resolve
	// automatically: a "build" subdirectory of the working directory
	// if one exists, otherwise the working directory itself.
	DocRoot string
}

// DefaultConfig returns a Config with the standard layout: certificates
// under cert/, port 8443, automatic document root resolution.
func DefaultConfig() Config {
	return Config{
		CertDir:  "cert",
		CertFile: "cert.pem",
		KeyFile:  "key.pem",
		Port:     8443,
	}
}
