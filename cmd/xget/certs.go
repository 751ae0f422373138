package main

import (
	"github.com/spf13/cobra"
)

var certsCmd = &cobra.Command{
	Use:   "certs",
	Short: "Manage TLS certificates",
	Long: `Manage the TLS certificate served in TLS mode.

Subcommands:
  validate - Validate certificate and key pair
  info     - Display certificate details
  generate - Generate self-signed certificate for development

Examples:
  # Validate the files the server will load
  xget certs validate --cert domain.crt --key domain.key

  # Display certificate information
  xget certs info domain.crt

  # Generate domain.crt and domain.key for localhost
  xget certs generate --host localhost`,
}

func init() {
	rootCmd.AddCommand(certsCmd)
}
