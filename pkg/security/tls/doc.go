/*
Package tls loads, serves and monitors the HTTPS certificate.

# Loading

Certificate and key are read into memory and parsed from bytes. A
certificate outside its validity window is rejected:

	material, err := tls.ReadMaterial("domain.crt", "domain.key")
	cert, err := material.KeyPair()

# Serving

CertificateReloader is the CertificateSource used by the HTTPS listener.
With security.tls.watch enabled it reloads the files when they change:

	reloader := tls.NewCertificateReloader(certFile, keyFile, tls.ReloaderOptions{Logger: logger})
	if err := reloader.Load(); err != nil {
		return err // fatal: TLS declared but unusable
	}
	go reloader.Watch(ctx)

	tlsConfig, err := tls.FromConfig(cfg.Security.TLS).ToTLSConfig(reloader)

# Expiry

ExpiryMonitor runs on a cron schedule, publishes the days left as a gauge
and logs a warning once fewer than security.tls.expiry_warning_days remain.
*/
package tls
