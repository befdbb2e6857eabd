//go:build integration

package storage

import (
	"context"
	"testing"

	"github.com/irihojaphet/kozi-chatbot-admin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS3Client_RoundTrip(t *testing.T) {
	ctx := context.Background()
	rc := testutil.NewRustFSContainer(ctx, t)
	defer rc.Terminate(ctx)

	client, err := NewS3Client(ctx, S3ClientConfig{
		Endpoint:        rc.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     testutil.RustFSAccessKey,
		SecretAccessKey: testutil.RustFSSecretKey,
		Bucket:          "kozi-knowledge",
		UsePathStyle:    true,
	})
	require.NoError(t, err)

	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.EnsureBucket(ctx))
	require.NoError(t, client.Ping(ctx))

	require.NoError(t, client.PutObject(ctx, "docs/Worker Guidelines.pdf", "application/pdf", []byte("%PDF-1.4 guidelines")))
	require.NoError(t, client.PutObject(ctx, "other/readme.txt", "text/plain", []byte("ignored")))

	objects, err := client.ListObjects(ctx, "docs/")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "Worker Guidelines.pdf", objects[0].Name())
	assert.Equal(t, int64(19), objects[0].Size)

	data, err := client.GetObject(ctx, objects[0].Key)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 guidelines", string(data))
}
