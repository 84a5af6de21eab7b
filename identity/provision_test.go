package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/keepldr/keepldr/attestation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChannel scripts an attestation channel for provisioning tests.
type stubChannel struct {
	res   attestation.Result
	err   error
	blob  []byte
	calls int
}

func (s *stubChannel) Attest(evidence []byte, out []byte) (attestation.Result, error) {
	s.calls++
	if s.err != nil {
		return attestation.Result{}, s.err
	}
	if len(out) >= len(s.blob) {
		copy(out, s.blob)
	}
	return s.res, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProvisionKeyFallsBackOnChannelError(t *testing.T) {
	ch := &stubChannel{err: errors.New("attestation device unavailable")}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)

	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok, "fallback key must be RSA")
	assert.Equal(t, 2048, rsaKey.N.BitLen())
}

func TestProvisionKeyFallsBackOnNoAttestation(t *testing.T) {
	ch := &stubChannel{res: attestation.Result{Tech: attestation.TechNone}}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &rsa.PrivateKey{}, key)

	// Only the probe call happens when nothing is recoverable.
	assert.Equal(t, 1, ch.calls)
}

func TestProvisionKeyFallsBackOnZeroLength(t *testing.T) {
	ch := &stubChannel{res: attestation.Result{Tech: attestation.TechSev}}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &rsa.PrivateKey{}, key)
}

func TestProvisionKeyFallsBackOnOversizedLength(t *testing.T) {
	ch := &stubChannel{res: attestation.Result{Tech: attestation.TechSev, ExpectedKeyLength: 1190}}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &rsa.PrivateKey{}, key)
	assert.Equal(t, 1, ch.calls)
}

func TestProvisionKeyFallsBackOnGarbageKeyBytes(t *testing.T) {
	blob := []byte("definitely not DER")
	ch := &stubChannel{
		res:  attestation.Result{Tech: attestation.TechSev, ExpectedKeyLength: uint32(len(blob))},
		blob: blob,
	}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &rsa.PrivateKey{}, key)
	assert.Equal(t, 2, ch.calls)
}

func TestProvisionKeyIgnoresSgxKeyLength(t *testing.T) {
	// The quote family carries no sealed keys; a reported length must
	// not trigger a fetch.
	ch := &stubChannel{res: attestation.Result{Tech: attestation.TechSgx, ExpectedKeyLength: 64}}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &rsa.PrivateKey{}, key)
	assert.Equal(t, 1, ch.calls)
}

func TestProvisionKeyRecoversSealedKey(t *testing.T) {
	sealed, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(sealed)
	require.NoError(t, err)
	require.LessOrEqual(t, len(der), 255, "test key DER must fit the recoverable bound")

	ch := &stubChannel{
		res:  attestation.Result{Tech: attestation.TechSev, ExpectedKeyLength: uint32(len(der))},
		blob: der,
	}

	key, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 2, ch.calls, "probe then fetch")

	recovered, ok := key.(*ecdsa.PrivateKey)
	require.True(t, ok)
	assert.True(t, sealed.Equal(recovered))
}

func TestProvisionKeyFreshKeysAreDistinct(t *testing.T) {
	ch := &stubChannel{res: attestation.Result{Tech: attestation.TechNone}}

	first, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)
	second, err := ProvisionKey(ch, testLogger())
	require.NoError(t, err)

	assert.False(t, first.(*rsa.PrivateKey).Equal(second), "fresh keys must differ across runs")
}
