package attestation

import (
	"log/slog"
	"os"
)

// Detect picks the attestation channel for this host. SEV secret
// injection wins when the injected secret file is present, then the
// SGX/TDX quote family, then the stub channel.
func Detect(log *slog.Logger, sevSecretPath string) Channel {
	sev := &SevChannel{SecretPath: sevSecretPath}
	if _, err := os.Stat(sev.path()); err == nil {
		log.Info("Detected SEV injected secret", "path", sev.path())
		return sev
	}

	sgx := &SgxChannel{}
	if sgx.Supported() {
		log.Info("Detected SGX/TDX quote provider")
		return sgx
	}

	log.Info("No attestation source detected")
	return &NoneChannel{}
}
