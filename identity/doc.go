/*
Package identity provisions the keep's cryptographic identity.

Provisioning decides between recovering prior key material over the
hardware attestation channel and generating a fresh RSA-2048 key pair,
then binds the chosen key into a short-lived self-signed certificate
whose subject encodes the service hostname and listen address.

The recovery protocol is probe-then-fetch: the channel is first asked
with a one-byte buffer how much key material it promises, then asked
again with a buffer of that size to produce it. Every failure along the
recovery path falls back to fresh generation; only certificate
construction itself is fatal.

The identity lives exclusively in process memory. It is never written to
durable storage and dies with the process.
*/
package identity
