package tls

import (
	"crypto/tls"
	"fmt"
	"os"

	"xget-hq/edge/pkg/config"
)

// Material is a PEM-encoded certificate chain and its private key.
type Material struct {
	CertPEM []byte
	KeyPEM  []byte
}

// ReadMaterial reads the certificate and key files into memory.
func ReadMaterial(certFile, keyFile string) (Material, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return Material{}, fmt.Errorf("failed to read certificate %q: %w", certFile, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return Material{}, fmt.Errorf("failed to read private key %q: %w", keyFile, err)
	}
	return Material{CertPEM: certPEM, KeyPEM: keyPEM}, nil
}

// KeyPair parses the material and checks that the leaf certificate is inside
// its validity window. The returned certificate has Leaf populated.
func (m Material) KeyPair() (tls.Certificate, error) {
	if len(m.CertPEM) == 0 {
		return tls.Certificate{}, fmt.Errorf("certificate is empty")
	}
	if len(m.KeyPEM) == 0 {
		return tls.Certificate{}, fmt.Errorf("private key is empty")
	}

	cert, err := tls.X509KeyPair(m.CertPEM, m.KeyPEM)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to load key pair: %w", err)
	}
	leaf, err := LeafCertificate(&cert)
	if err != nil {
		return tls.Certificate{}, err
	}
	cert.Leaf = leaf

	if err := ValidateX509Certificate(leaf); err != nil {
		return tls.Certificate{}, fmt.Errorf("certificate validation failed: %w", err)
	}
	return cert, nil
}

// CertificateSource supplies the serving certificate per handshake.
type CertificateSource interface {
	GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error)
}

// Config holds the protocol settings of the HTTPS listener.
type Config struct {
	// MinVersion is the minimum TLS version to accept ("1.2" or "1.3").
	// Default: "1.2"
	MinVersion string

	// CipherSuites restricts TLS 1.2 cipher suites by name. Empty uses Go's
	// defaults. TLS 1.3 suites are not configurable.
	CipherSuites []string
}

// FromConfig extracts the protocol settings from the security.tls section.
func FromConfig(cfg config.TLSConfig) Config {
	return Config{
		MinVersion:   cfg.MinVersion,
		CipherSuites: cfg.CipherSuites,
	}
}

// ToTLSConfig builds a server tls.Config that asks source for the
// certificate on every handshake, so a reloaded certificate is picked up by
// new connections without a restart.
func (c Config) ToTLSConfig(source CertificateSource) (*tls.Config, error) {
	if source == nil {
		return nil, fmt.Errorf("certificate source is required")
	}

	minVersion, err := parseTLSVersion(c.MinVersion)
	if err != nil {
		return nil, err
	}
	suites, err := parseCipherSuites(c.CipherSuites)
	if err != nil {
		return nil, err
	}

	// #nosec G402 - MinVersion is validated (TLS 1.0/1.1 rejected)
	return &tls.Config{
		GetCertificate: source.GetCertificate,
		MinVersion:     minVersion,
		CipherSuites:   suites,
		NextProtos:     []string{"h2", "http/1.1"},
	}, nil
}

// parseTLSVersion converts a version string to a tls constant.
// TLS 1.0 and 1.1 are not supported.
func parseTLSVersion(v string) (uint16, error) {
	switch v {
	case "1.2", "":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported TLS version %q", v)
	}
}

// parseCipherSuites converts cipher suite names to IDs. Nil means Go's
// defaults.
func parseCipherSuites(names []string) ([]uint16, error) {
	if len(names) == 0 {
		return nil, nil
	}

	suites := make([]uint16, 0, len(names))
	for _, name := range names {
		id, ok := cipherSuiteMap[name]
		if !ok {
			return nil, fmt.Errorf("unsupported cipher suite %q", name)
		}
		suites = append(suites, id)
	}
	return suites, nil
}

// cipherSuiteMap maps cipher suite names to their tls package constants.
// Only secure TLS 1.2 suites are included.
var cipherSuiteMap = map[string]uint16{
	"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256":   tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384":   tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256": tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
	"TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384": tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
	"TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305":    tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256,
	"TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305":  tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256,
}
