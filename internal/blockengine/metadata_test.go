package blockengine_test

import (
	"testing"

	"github.com/rajames440/starforth/internal/blockengine"
	"github.com/stretchr/testify/require"
)

func TestMetadataRoundTrip(t *testing.T) {
	m := blockengine.Metadata{
		Magic:         blockengine.MetaMagic,
		ContentType:   2,
		ContentLength: 512,
	}
	m.AppData[0] = 42

	buf := m.Marshal()
	require.Len(t, buf, blockengine.MetaPerBlock)

	got, err := blockengine.UnmarshalMetadata(buf)
	require.NoError(t, err)
	require.Equal(t, m, got)
}

func TestZeroedWithMagic(t *testing.T) {
	z := blockengine.ZeroedWithMagic()
	require.Equal(t, uint64(blockengine.MetaMagic), z.Magic)
	require.Equal(t, uint64(0), z.Checksum)
}
