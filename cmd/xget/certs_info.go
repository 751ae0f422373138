package main

import (
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"xget-hq/edge/pkg/cli"
	sectls "xget-hq/edge/pkg/security/tls"
)

var infoFlags struct {
	format string
}

var certsInfoCmd = &cobra.Command{
	Use:   "info <cert-file>",
	Short: "Display certificate details",
	Long: `Display the subject, issuer, validity window, SANs and algorithms of a
PEM certificate.

Output formats:
  - text (default): Human-readable formatted output
  - json: JSON-formatted output for scripting

Examples:
  # Display certificate info in text format
  xget certs info domain.crt

  # Display in JSON format
  xget certs info --format json domain.crt`,
	Args: cobra.ExactArgs(1),
	RunE: displayCertInfo,
}

func init() {
	certsCmd.AddCommand(certsInfoCmd)

	certsInfoCmd.Flags().StringVar(&infoFlags.format, "format", "text", "output format: text, json")
}

// certReport is the result of certs info.
type certReport struct {
	File          string   `json:"file"`
	Subject       string   `json:"subject"`
	Issuer        string   `json:"issuer"`
	SerialNumber  string   `json:"serial_number"`
	NotBefore     string   `json:"not_before"`
	NotAfter      string   `json:"not_after"`
	DaysRemaining int      `json:"days_remaining"`
	Expired       bool     `json:"expired"`
	SelfSigned    bool     `json:"self_signed"`
	DNSNames      []string `json:"dns_names,omitempty"`
	IPAddresses   []string `json:"ip_addresses,omitempty"`
	KeyUsage      []string `json:"key_usage,omitempty"`
	SignatureAlg  string   `json:"signature_algorithm"`
	PublicKeyAlg  string   `json:"public_key_algorithm"`
}

func newCertReport(file string, cert *x509.Certificate, now time.Time) certReport {
	info := sectls.ExtractCertificateInfo(cert)
	return certReport{
		File:          file,
		Subject:       info.Subject,
		Issuer:        info.Issuer,
		SerialNumber:  info.SerialNumber,
		NotBefore:     info.NotBefore.UTC().Format(time.RFC3339),
		NotAfter:      info.NotAfter.UTC().Format(time.RFC3339),
		DaysRemaining: int(info.NotAfter.Sub(now).Hours() / 24),
		Expired:       now.After(info.NotAfter),
		SelfSigned:    info.SelfSigned,
		DNSNames:      info.DNSNames,
		IPAddresses:   info.IPAddresses,
		KeyUsage:      keyUsages(cert.KeyUsage),
		SignatureAlg:  info.SignatureAlgorithm,
		PublicKeyAlg:  info.PublicKeyAlgorithm,
	}
}

func (r certReport) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Certificate: %s\n\n", r.File)
	fmt.Fprintf(&sb, "Subject: %s\n", r.Subject)
	fmt.Fprintf(&sb, "Issuer:  %s\n", r.Issuer)
	if r.SelfSigned {
		sb.WriteString("         (self-signed)\n")
	}

	sb.WriteString("\nValidity:\n")
	fmt.Fprintf(&sb, "  Not Before: %s\n", r.NotBefore)
	fmt.Fprintf(&sb, "  Not After:  %s\n", r.NotAfter)
	if r.Expired {
		sb.WriteString("  Status: ✗ EXPIRED\n")
	} else {
		fmt.Fprintf(&sb, "  Status: ✓ Valid (%d days remaining)\n", r.DaysRemaining)
	}

	if len(r.DNSNames) > 0 || len(r.IPAddresses) > 0 {
		sb.WriteString("\nSubject Alternative Names:\n")
		for _, name := range r.DNSNames {
			fmt.Fprintf(&sb, "  - DNS: %s\n", name)
		}
		for _, ip := range r.IPAddresses {
			fmt.Fprintf(&sb, "  - IP: %s\n", ip)
		}
	}

	if len(r.KeyUsage) > 0 {
		fmt.Fprintf(&sb, "\nKey Usage: %s\n", strings.Join(r.KeyUsage, ", "))
	}

	sb.WriteString("\nAlgorithms:\n")
	fmt.Fprintf(&sb, "  Signature:  %s\n", r.SignatureAlg)
	fmt.Fprintf(&sb, "  Public Key: %s\n", r.PublicKeyAlg)
	fmt.Fprintf(&sb, "\nSerial Number: %s\n", r.SerialNumber)
	return sb.String()
}

func displayCertInfo(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(infoFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	certFile := args[0]
	data, err := os.ReadFile(certFile)
	if err != nil {
		return cli.NewCommandError("certs info", fmt.Errorf("failed to read certificate: %w", err))
	}
	cert, err := sectls.ParseCertificatePEM(data)
	if err != nil {
		return cli.NewCommandError("certs info", fmt.Errorf("failed to parse certificate: %w", err))
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newCertReport(certFile, cert, time.Now()))
}

func keyUsages(usage x509.KeyUsage) []string {
	names := []struct {
		bit  x509.KeyUsage
		name string
	}{
		{x509.KeyUsageDigitalSignature, "Digital Signature"},
		{x509.KeyUsageContentCommitment, "Content Commitment"},
		{x509.KeyUsageKeyEncipherment, "Key Encipherment"},
		{x509.KeyUsageDataEncipherment, "Data Encipherment"},
		{x509.KeyUsageKeyAgreement, "Key Agreement"},
		{x509.KeyUsageCertSign, "Certificate Sign"},
		{x509.KeyUsageCRLSign, "CRL Sign"},
	}
	var out []string
	for _, n := range names {
		if usage&n.bit != 0 {
			out = append(out, n.name)
		}
	}
	return out
}
