package pemcodec

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileRoundTrip(t *testing.T) {

	fs := afero.NewMemMapFs()
	path := "/certs/chain.pem"

	err := EncodeFile(fs, path, testCert, testKey)
	require.Nil(t, err)

	objects, err := DecodeFile(fs, path)
	assert.Nil(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, KindCertificate, objects[0].Kind())
	assert.Equal(t, KindKeyPair, objects[1].Kind())
}

func TestEncodeFileTruncates(t *testing.T) {

	fs := afero.NewMemMapFs()
	path := "/certs/leaf.pem"

	require.Nil(t, EncodeFile(fs, path, testCert, testCert))
	require.Nil(t, EncodeFile(fs, path, testCert))

	objects, err := DecodeFile(fs, path)
	assert.Nil(t, err)
	assert.Len(t, objects, 1)
}

func TestDecodeFileMissing(t *testing.T) {

	fs := afero.NewMemMapFs()
	_, err := DecodeFile(fs, "/does/not/exist.pem")
	assert.NotNil(t, err)
}
