package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"xget-hq/edge/pkg/cli"
	"xget-hq/edge/pkg/config"
	sectls "xget-hq/edge/pkg/security/tls"
)

var generateFlags struct {
	hosts    string
	org      string
	validity int
	keySize  int
	output   string
}

var certsGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate self-signed certificate",
	Long: `Generate a self-signed TLS certificate for development.

The certificate and key are written as domain.crt and domain.key, the file
names the server loads by default. The key is written with mode 0600.

By default an ECDSA P-256 key is generated. Pass --key-size to generate an
RSA key instead (2048, 3072 or 4096 bits).

⚠️  Self-signed certificates are for development only.

Examples:
  # Generate certificate for localhost in the working directory
  xget certs generate --host localhost

  # Generate with multiple hosts
  xget certs generate --host "localhost,127.0.0.1,edge.local"

  # Generate an RSA certificate into a directory
  xget certs generate --key-size 2048 --validity 30 --output certs/`,
	Args: cobra.NoArgs,
	RunE: generateCertificate,
}

func init() {
	certsCmd.AddCommand(certsGenerateCmd)

	certsGenerateCmd.Flags().StringVar(&generateFlags.hosts, "host", "localhost", "comma-separated hostnames and IPs")
	certsGenerateCmd.Flags().StringVar(&generateFlags.org, "org", "xget", "organization name")
	certsGenerateCmd.Flags().IntVar(&generateFlags.validity, "validity", 365, "validity in days")
	certsGenerateCmd.Flags().IntVar(&generateFlags.keySize, "key-size", 0, "RSA key size (2048, 3072, 4096); 0 selects ECDSA P-256")
	certsGenerateCmd.Flags().StringVarP(&generateFlags.output, "output", "o", ".", "output directory")
}

func generateCertificate(cmd *cobra.Command, args []string) error {
	if generateFlags.validity <= 0 {
		return cli.NewConfigError("validity", fmt.Sprintf("must be positive, got %d", generateFlags.validity))
	}

	var hosts []string
	for _, h := range strings.Split(generateFlags.hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}

	material, err := sectls.GenerateSelfSigned(sectls.GenerateOptions{
		Hosts:        hosts,
		Organization: generateFlags.org,
		ValidFor:     time.Duration(generateFlags.validity) * 24 * time.Hour,
		RSAKeySize:   generateFlags.keySize,
	})
	if err != nil {
		return cli.NewCommandError("certs generate", err)
	}

	if err := os.MkdirAll(generateFlags.output, 0750); err != nil {
		return cli.NewCommandError("certs generate", fmt.Errorf("failed to create output directory: %w", err))
	}

	certPath := filepath.Join(generateFlags.output, config.DefaultCertFile)
	if err := os.WriteFile(certPath, material.CertPEM, 0644); err != nil {
		return cli.NewCommandError("certs generate", fmt.Errorf("failed to write certificate: %w", err))
	}
	keyPath := filepath.Join(generateFlags.output, config.DefaultKeyFile)
	if err := os.WriteFile(keyPath, material.KeyPEM, 0600); err != nil {
		return cli.NewCommandError("certs generate", fmt.Errorf("failed to write private key: %w", err))
	}

	keyDesc := "ECDSA P-256"
	if generateFlags.keySize != 0 {
		keyDesc = fmt.Sprintf("RSA %d", generateFlags.keySize)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Hosts: %s\n", strings.Join(hosts, ", "))
	fmt.Fprintf(out, "Organization: %s\n", generateFlags.org)
	fmt.Fprintf(out, "Validity: %d days\n", generateFlags.validity)
	fmt.Fprintf(out, "Key: %s\n\n", keyDesc)
	fmt.Fprintf(out, "✓ Certificate generated: %s\n", certPath)
	fmt.Fprintf(out, "✓ Private key generated: %s\n\n", keyPath)

	fmt.Fprintln(out, "To serve it, add to your config.yaml:")
	fmt.Fprintln(out, "---")
	fmt.Fprintln(out, "security:")
	fmt.Fprintln(out, "  tls:")
	fmt.Fprintln(out, "    enabled: true")
	fmt.Fprintf(out, "    cert_file: %q\n", certPath)
	fmt.Fprintf(out, "    key_file: %q\n", keyPath)
	return nil
}
