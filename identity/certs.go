package identity

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"time"
)

const (
	// certValidityDays is the fixed validity window of the issued
	// identity certificate.
	certValidityDays = 7

	subjectCountry      = "GB"
	subjectOrganization = "keepldr"
)

// IssueCertificate builds the self-signed identity certificate binding
// the provisioned key to the service's network identity.
//
// The subject carries fixed country and organization fields and the
// local hostname as common name. The listen address host becomes a
// subject alternative name (IP or DNS, whichever it parses as).
// Validity starts now and extends exactly seven days. The certificate
// is self-signed with a SHA-256 based algorithm for the key type.
//
// Any failure here is fatal to startup: without a valid certificate the
// service cannot offer a TLS identity.
func IssueCertificate(key crypto.Signer, listenAddr, hostname string) (KeyPEM, CertPEM, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, nil, fmt.Errorf("generating certificate serial: %w", err)
	}

	notBefore := time.Now().UTC().Truncate(time.Second)
	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Country:      []string{subjectCountry},
			Organization: []string{subjectOrganization},
			CommonName:   hostname,
		},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(certValidityDays * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	host := listenAddr
	if h, _, err := net.SplitHostPort(listenAddr); err == nil {
		host = h
	}
	if ip := net.ParseIP(host); ip != nil {
		template.IPAddresses = []net.IP{ip}
	} else if host != "" {
		template.DNSNames = []string{host}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, key.Public(), key)
	if err != nil {
		return nil, nil, fmt.Errorf("creating identity certificate: %w", err)
	}

	keyDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("serializing identity key: %w", err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: keyDER})
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	return KeyPEM(keyPEM), CertPEM(certPEM), nil
}
