package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/carhire/apiserver/config"
)

func TestOpenDisabled(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "none"})
	require.ErrorIs(t, err, ErrDisabled)
}

func TestOpenValidatesMinioConfig(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{
		Backend: "minio",
		Minio:   config.MinioConfig{Endpoint: "localhost:9000", Bucket: "carhire"},
	})
	require.ErrorContains(t, err, "access key and secret key are required")
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), config.StorageConfig{Backend: "s3"})
	require.ErrorContains(t, err, `unknown storage backend "s3"`)
}

func TestOpenMemory(t *testing.T) {
	st, err := Open(context.Background(), config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)

	require.NoError(t, st.Put(context.Background(), "cars/1/a.png", strings.NewReader("png"), 3, "image/png"))
	rc, info, err := st.Get(context.Background(), "cars/1/a.png")
	require.NoError(t, err)
	defer rc.Close()
	require.Equal(t, "image/png", info.ContentType)
}

func TestMemoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStorage(NewMemory("carhire"))

	require.NoError(t, s.Put(ctx, "cars/1/a.png", strings.NewReader("png-bytes"), 9, "image/png"))

	rc, info, err := s.Get(ctx, "cars/1/a.png")
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "png-bytes", string(body))
	require.Equal(t, "image/png", info.ContentType)
	require.EqualValues(t, 9, info.Size)

	require.NoError(t, s.Delete(ctx, "cars/1/a.png"))
	_, _, err = s.Get(ctx, "cars/1/a.png")
	require.ErrorIs(t, err, ErrObjectNotFound)
	require.Equal(t, "carhire", s.Bucket())
}
