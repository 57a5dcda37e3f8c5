package postgres

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_PackRoundTrip(t *testing.T) {
	svc, err := NewAuditService(nil)
	require.NoError(t, err)

	small := []byte(`{"number":"PI-1403-00001"}`)
	plain, compressed, algo := svc.pack(small)
	assert.Equal(t, CompressionNone, algo)
	assert.Equal(t, small, plain)
	assert.Nil(t, compressed)

	large := bytes.Repeat([]byte(`{"productId":"x","quantity":"10"},`), 1000)
	plain, compressed, algo = svc.pack(large)
	assert.Equal(t, CompressionZstd, algo)
	assert.Nil(t, plain)
	assert.Less(t, len(compressed), len(large))

	restored, err := svc.unpack(plain, compressed, algo)
	require.NoError(t, err)
	assert.Equal(t, large, restored)
}
