// Package security groups the transport security of the edge server.
//
// Subpackage tls loads the certificate and key from byte sources, builds the
// HTTPS listener configuration, reloads renewed certificates and monitors
// their expiry.
package security
