package identity

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"time"
)

// KeyPEM is the service identity's private key in PEM format.
type KeyPEM []byte

// Validate checks that the key is a well-formed PEM private key.
func (k KeyPEM) Validate() error {
	block, _ := pem.Decode(k)
	if block == nil || block.Type != "PRIVATE KEY" {
		return errors.New("invalid private key: not in PEM format or not a private key")
	}
	if _, err := x509.ParsePKCS8PrivateKey(block.Bytes); err != nil {
		return fmt.Errorf("invalid private key structure: %w", err)
	}
	return nil
}

// CertPEM is the service identity's certificate in PEM format.
type CertPEM []byte

// Validate checks that the certificate is well-formed PEM.
func (c CertPEM) Validate() error {
	_, err := c.GetX509Cert()
	return err
}

// GetX509Cert returns the parsed X.509 certificate.
func (c CertPEM) GetX509Cert() (*x509.Certificate, error) {
	block, _ := pem.Decode(c)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errors.New("invalid certificate: not in PEM format or not a certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("invalid certificate structure: %w", err)
	}
	return cert, nil
}

// IsExpired checks if the certificate has expired.
func (c CertPEM) IsExpired() (bool, error) {
	cert, err := c.GetX509Cert()
	if err != nil {
		return false, err
	}
	return cert.NotAfter.Before(time.Now()), nil
}

// TLSCertificate combines the key and certificate into a tls.Certificate
// ready to be installed as the server identity.
func TLSCertificate(key KeyPEM, cert CertPEM) (tls.Certificate, error) {
	return tls.X509KeyPair(cert, key)
}
