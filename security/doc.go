// Package security holds the TLS settings used by the HTTP transport.
//
//	cfg := security.TLSConfig{
//	    CAFile:   "/etc/restc/ca.pem",
//	    CertFile: "/etc/restc/client.pem",
//	    KeyFile:  "/etc/restc/client-key.pem",
//	}
//	tlsConfig, err := cfg.Build()
package security
