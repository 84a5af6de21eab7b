package envelope

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	in := &Workload{
		HumanReadableInfo: "demo",
		WasmBinary:        []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00},
	}

	data, err := Encode(in)
	require.NoError(t, err)

	out, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, in.HumanReadableInfo, out.HumanReadableInfo)
	assert.Equal(t, in.WasmBinary, out.WasmBinary)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode([]byte("not cbor at all"))
	requireRejection(t, err)
}

func TestDecodeRejectsTruncated(t *testing.T) {
	data, err := Encode(&Workload{HumanReadableInfo: "t", WasmBinary: []byte{1, 2, 3, 4}})
	require.NoError(t, err)

	_, err = Decode(data[:len(data)-3])
	requireRejection(t, err)
}

func TestDecodeRejectsTrailingBytes(t *testing.T) {
	data, err := Encode(&Workload{HumanReadableInfo: "t", WasmBinary: []byte{1}})
	require.NoError(t, err)

	_, err = Decode(append(data, 0xff))
	requireRejection(t, err)
}

func TestDecodeRejectsNonMap(t *testing.T) {
	data, err := cbor.Marshal([]int{1, 2, 3})
	require.NoError(t, err)

	_, err = Decode(data)
	requireRejection(t, err)
}

func TestDecodeRejectsMissingFields(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{"human_readable_info": "only one field"})
	require.NoError(t, err)

	_, err = Decode(data)
	requireRejection(t, err)
}

func TestDecodeRejectsWrongFieldType(t *testing.T) {
	data, err := cbor.Marshal(map[string]any{
		"human_readable_info": 42,
		"wasm_binary":         []byte{1},
	})
	require.NoError(t, err)

	_, err = Decode(data)
	requireRejection(t, err)
}

func TestDecodeEmptyBody(t *testing.T) {
	_, err := Decode(nil)
	requireRejection(t, err)
}

func requireRejection(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	var rej *Rejection
	require.True(t, errors.As(err, &rej), "error must be a *Rejection, got %T", err)
	assert.Equal(t, RejectionDiagnostic, rej.Error())
}

func TestCommsCompleteRoundTrip(t *testing.T) {
	for _, c := range []CommsComplete{CommsSuccess, CommsFailure} {
		data, err := EncodeCommsComplete(c)
		require.NoError(t, err)

		out, err := DecodeCommsComplete(data)
		require.NoError(t, err)
		assert.Equal(t, c, out)
	}
}

func TestCommsCompleteRejectsUnknownVariant(t *testing.T) {
	data, err := cbor.Marshal("Partial")
	require.NoError(t, err)

	_, err = DecodeCommsComplete(data)
	requireRejection(t, err)
}
