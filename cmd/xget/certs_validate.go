package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"xget-hq/edge/pkg/cli"
	"xget-hq/edge/pkg/config"
	sectls "xget-hq/edge/pkg/security/tls"
)

var certsValidateFlags struct {
	certFile    string
	keyFile     string
	warningDays int
}

var certsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate certificate and key",
	Long: `Validate a TLS certificate and private key the way the server loads them.

This command checks that:
  - both files are readable PEM
  - the certificate and key form a pair
  - the certificate is inside its validity window

It warns when fewer than --warning-days of validity remain.

Examples:
  # Validate the conventional files in the working directory
  xget certs validate

  # Validate explicit files
  xget certs validate --cert /etc/xget/domain.crt --key /etc/xget/domain.key`,
	Args: cobra.NoArgs,
	RunE: validateCertificate,
}

func init() {
	certsCmd.AddCommand(certsValidateCmd)

	certsValidateCmd.Flags().StringVar(&certsValidateFlags.certFile, "cert", config.DefaultCertFile, "certificate file")
	certsValidateCmd.Flags().StringVar(&certsValidateFlags.keyFile, "key", config.DefaultKeyFile, "private key file")
	certsValidateCmd.Flags().IntVar(&certsValidateFlags.warningDays, "warning-days", config.DefaultExpiryWarningDays, "warn when fewer days of validity remain")
}

func validateCertificate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating certificate: %s\n\n", certsValidateFlags.certFile)

	material, err := sectls.ReadMaterial(certsValidateFlags.certFile, certsValidateFlags.keyFile)
	if err != nil {
		return cli.NewCommandError("certs validate", err)
	}

	pair, err := material.KeyPair()
	if err != nil {
		fmt.Fprintln(out, "✗ Certificate invalid")
		return cli.NewCommandError("certs validate", err)
	}
	fmt.Fprintln(out, "✓ Certificate and key match")

	leaf := pair.Leaf
	fmt.Fprintf(out, "✓ Certificate not expired (valid until %s)\n", leaf.NotAfter.Format("2006-01-02"))

	if _, warning := sectls.CheckCertificateExpiration(leaf, certsValidateFlags.warningDays); warning != "" {
		fmt.Fprintf(out, "⚠  %s\n", warning)
	}

	info := sectls.ExtractCertificateInfo(leaf)
	fmt.Fprintln(out, "\nCertificate Details:")
	fmt.Fprintf(out, "  Subject: %s\n", info.Subject)
	fmt.Fprintf(out, "  Issuer: %s\n", info.Issuer)
	fmt.Fprintf(out, "  Serial: %s\n", info.SerialNumber)
	fmt.Fprintf(out, "  Valid From: %s\n", info.NotBefore.Format(time.RFC3339))
	fmt.Fprintf(out, "  Valid Until: %s\n", info.NotAfter.Format(time.RFC3339))
	if len(info.DNSNames) > 0 {
		fmt.Fprintf(out, "  SANs (DNS): %v\n", info.DNSNames)
	}
	if len(info.IPAddresses) > 0 {
		fmt.Fprintf(out, "  SANs (IP): %v\n", info.IPAddresses)
	}

	return nil
}
