package tls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"strings"
	"time"
)

// ValidateCertificate checks that the leaf of cert is inside its validity
// window.
func ValidateCertificate(cert *tls.Certificate) error {
	leaf, err := LeafCertificate(cert)
	if err != nil {
		return err
	}
	return ValidateX509Certificate(leaf)
}

// LeafCertificate returns the parsed leaf of cert, parsing it if Leaf is
// not populated.
func LeafCertificate(cert *tls.Certificate) (*x509.Certificate, error) {
	if cert == nil {
		return nil, fmt.Errorf("certificate is nil")
	}
	if cert.Leaf != nil {
		return cert.Leaf, nil
	}
	if len(cert.Certificate) == 0 {
		return nil, fmt.Errorf("certificate chain is empty")
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}
	return leaf, nil
}

// ValidateX509Certificate validates an x509 certificate for expiration.
func ValidateX509Certificate(cert *x509.Certificate) error {
	return validateAt(cert, time.Now())
}

func validateAt(cert *x509.Certificate, now time.Time) error {
	if cert == nil {
		return fmt.Errorf("certificate is nil")
	}
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("certificate is not yet valid (valid from %s)", cert.NotBefore.Format(time.RFC3339))
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("certificate expired on %s", cert.NotAfter.Format(time.RFC3339))
	}
	return nil
}

// CheckCertificateExpiration returns the whole days left before cert
// expires and a warning when fewer than warnDays remain.
func CheckCertificateExpiration(cert *x509.Certificate, warnDays int) (daysUntilExpiry int, warning string) {
	return expirationAt(cert, warnDays, time.Now())
}

func expirationAt(cert *x509.Certificate, warnDays int, now time.Time) (int, string) {
	days := int(cert.NotAfter.Sub(now).Hours() / 24)

	var warning string
	if days < warnDays {
		warning = fmt.Sprintf("certificate expires in %d days (on %s)",
			days, cert.NotAfter.Format("2006-01-02"))
	}
	return days, warning
}

// CertificateInfo is a human-readable summary of a certificate.
type CertificateInfo struct {
	Subject            string
	Issuer             string
	SerialNumber       string
	NotBefore          time.Time
	NotAfter           time.Time
	DNSNames           []string
	IPAddresses        []string
	SignatureAlgorithm string
	PublicKeyAlgorithm string
	SelfSigned         bool
}

// ExtractCertificateInfo extracts information from an x509 certificate.
func ExtractCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	info := &CertificateInfo{
		Subject:            cert.Subject.String(),
		Issuer:             cert.Issuer.String(),
		SerialNumber:       fmt.Sprintf("%x", cert.SerialNumber),
		NotBefore:          cert.NotBefore,
		NotAfter:           cert.NotAfter,
		DNSNames:           cert.DNSNames,
		SignatureAlgorithm: cert.SignatureAlgorithm.String(),
		PublicKeyAlgorithm: cert.PublicKeyAlgorithm.String(),
		SelfSigned:         cert.CheckSignatureFrom(cert) == nil,
	}

	for _, ip := range cert.IPAddresses {
		info.IPAddresses = append(info.IPAddresses, ip.String())
	}

	return info
}

// ParseCertificatePEM parses the first CERTIFICATE block in data.
func ParseCertificatePEM(data []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("no PEM certificate found")
		}
		if block.Type == "CERTIFICATE" {
			return x509.ParseCertificate(block.Bytes)
		}
	}
}

// GenerateOptions controls GenerateSelfSigned.
type GenerateOptions struct {
	// Hosts are DNS names or IP addresses for the SAN extension. The first
	// entry is also the subject common name.
	Hosts []string

	// Organization is the subject organization.
	Organization string

	// ValidFor is the certificate lifetime. Default: one year.
	ValidFor time.Duration

	// RSAKeySize selects an RSA key of this size. Zero selects ECDSA P-256.
	RSAKeySize int

	// NotBefore overrides the start of the validity window. Default: now.
	NotBefore time.Time
}

// GenerateSelfSigned creates a self-signed server certificate. It is meant
// for development and tests, not production.
func GenerateSelfSigned(opts GenerateOptions) (Material, error) {
	if len(opts.Hosts) == 0 {
		return Material{}, fmt.Errorf("at least one host is required")
	}
	if opts.ValidFor <= 0 {
		opts.ValidFor = 365 * 24 * time.Hour
	}
	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Minute)
	}

	var (
		key    crypto.Signer
		keyDER []byte
		err    error
	)
	switch opts.RSAKeySize {
	case 0:
		var k *ecdsa.PrivateKey
		if k, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader); err == nil {
			key = k
			keyDER, err = x509.MarshalPKCS8PrivateKey(k)
		}
	case 2048, 3072, 4096:
		var k *rsa.PrivateKey
		if k, err = rsa.GenerateKey(rand.Reader, opts.RSAKeySize); err == nil {
			key = k
			keyDER, err = x509.MarshalPKCS8PrivateKey(k)
		}
	default:
		return Material{}, fmt.Errorf("invalid key size: %d (must be 2048, 3072, or 4096)", opts.RSAKeySize)
	}
	if err != nil {
		return Material{}, fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return Material{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   opts.Hosts[0],
			Organization: []string{opts.Organization},
		},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotBefore.Add(opts.ValidFor),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range opts.Hosts {
		h = strings.TrimSpace(h)
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else if h != "" {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, key.Public(), key)
	if err != nil {
		return Material{}, fmt.Errorf("failed to create certificate: %w", err)
	}

	return Material{
		CertPEM: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		KeyPEM:  pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER}),
	}, nil
}
