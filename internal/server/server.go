package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jackkimmins/jMineWASM/internal/certify"
)

// Server is the HTTPS static file server. It provisions certificate
// material on startup, resolves the document root once, and then serves
// until interrupted.
type Server struct {
	config Config
	gen    certify.Generator
	logger *slog.Logger
}

// New creates a new Server with the given configuration.
func New(cfg Config) (*Server, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	return &Server{
		config: cfg,
		gen:    certify.SelfSigned{},
		logger: logger,
	}, nil
}

// Run provisions the certificate, binds the TLS listener on all
// interfaces, and serves the document root until the context is
// cancelled or an interrupt/terminate signal arrives. A signal is a
// clean shutdown, not an error: Run returns nil and the process exits 0.
func (s *Server) Run(ctx context.Context) error {
	certPath, keyPath, err := certify.Ensure(
		s.config.CertDir, s.config.CertFile, s.config.KeyFile, s.gen, s.logger)
	if err != nil {
		return fmt.Errorf("provision certificate: %w", err)
	}

	root, err := s.documentRoot()
	if err != nil {
		return fmt.Errorf("resolve document root: %w", err)
	}

	tlsCert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return fmt.Errorf("load TLS certificate: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: crossOriginIsolation(http.FileServer(http.Dir(root))),
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{tlsCert},
			MinVersion:   tls.VersionTLS12,
		},
	}

	s.logger.Info("serving HTTPS",
		"port", s.config.Port,
		"docRoot", root,
	)
	s.printAddresses(os.Stdout)

	return s.serveTLS(ctx, srv)
}

// documentRoot resolves the directory to serve: an explicit DocRoot if
// configured, otherwise a build/ subdirectory of the working directory
// when present, otherwise the working directory itself.
func (s *Server) documentRoot() (string, error) {
	if s.config.DocRoot != "" {
		return filepath.Abs(s.config.DocRoot)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return resolveDocRoot(cwd), nil
}

// resolveDocRoot returns base/build if it exists and is a directory,
// otherwise base. The build directory is where the wasm toolchain puts
// its output; serving it avoids exposing the source tree.
func resolveDocRoot(base string) string {
	build := filepath.Join(base, "build")
	if info, err := os.Stat(build); err == nil && info.IsDir() {
		return build
	}
	return base
}

// printAddresses writes the reachable URLs to w. These are user-facing
// output, not logs: the whole point of the tool is pointing a browser
// (possibly on another device) at one of them.
func (s *Server) printAddresses(w *os.File) {
	fmt.Fprintf(w, "HTTPS server running on all interfaces at:\n")
	fmt.Fprintf(w, "  https://localhost:%d/\n", s.config.Port)
	fmt.Fprintf(w, "  https://127.0.0.1:%d/\n", s.config.Port)
	for _, ip := range lanAddrs() {
		fmt.Fprintf(w, "  https://%s:%d/  (from another device)\n", ip, s.config.Port)
	}
}

// lanAddrs returns the host's non-loopback IPv4 addresses.
func lanAddrs() []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var ips []string
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipNet.IP.To4(); ip4 != nil {
			ips = append(ips, ip4.String())
		}
	}
	return ips
}

// serveTLS runs the HTTPS server until it fails or until the context is
// cancelled or SIGINT/SIGTERM arrives. Interruption stops the listener
// and closes remaining connections without draining in-flight requests.
func (s *Server) serveTLS(ctx context.Context, srv *http.Server) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		// TLSConfig is pre-configured on the server, so pass empty paths.
		if err := srv.ListenAndServeTLS("", ""); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("server stopped")
		srv.Close()
	}

	return nil
}
