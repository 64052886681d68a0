package certify

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"
)

// Key and validity parameters for the generated certificate. These match
// what `openssl req -x509 -newkey rsa:2048 -days 365 -nodes -subj
// /CN=localhost` would produce, which is what browsers are already asked
// to trust for this tool.
const (
	// DefaultKeyBits is the RSA key size for generated certificates.
	DefaultKeyBits = 2048

	// DefaultValidityDays is how long a generated certificate is valid.
	// A year is plenty for a development certificate; delete the files
	// to force a fresh pair.
	DefaultValidityDays = 365

	// DefaultCommonName is the subject CN of generated certificates.
	DefaultCommonName = "localhost"
)

// Generator produces a certificate and private key as PEM bytes.
// It exists so that the provisioning contract does not care whether
// the material comes from the native crypto libraries, an external
// tool, or a test fake.
type Generator interface {
	Generate(commonName string, validityDays int) (certPEM, keyPEM []byte, err error)
}

// SelfSigned generates a self-signed RSA certificate natively.
type SelfSigned struct {
	// KeyBits is the RSA key size. Zero means DefaultKeyBits.
	KeyBits int
}

// Generate creates a new RSA private key and a self-signed X.509
// certificate for the given common name, valid from now for
// validityDays. The common name is also carried as a DNS SAN because
// TLS clients no longer verify against the CN. The key is returned
// unencrypted in PKCS#8 form.
func (g SelfSigned) Generate(commonName string, validityDays int) ([]byte, []byte, error) {
	bits := g.KeyBits
	if bits <= 0 {
		bits = DefaultKeyBits
	}

	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, nil, fmt.Errorf("generate RSA key: %w", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial: %w", err)
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName: commonName,
		},
		DNSNames:              []string{commonName},
		NotBefore:             now,
		NotAfter:              now.Add(time.Duration(validityDays) * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	// Self-signed: issuer = subject, signed with own key.
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, fmt.Errorf("create certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}

// randomSerial generates a random 128-bit serial number for a certificate.
// X.509 serial numbers must be positive integers; 128 bits of entropy
// makes collisions astronomically unlikely without tracking state.
func randomSerial() (*big.Int, error) {
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	serial, err := rand.Int(rand.Reader, max)
	if err != nil {
		return nil, fmt.Errorf("generate random serial: %w", err)
	}
	return serial, nil
}
