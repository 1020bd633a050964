package upload_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcminio "github.com/testcontainers/testcontainers-go/modules/minio"

	"github.com/aixcyberchallenge/data-form/internal/upload"
)

const bucket = "dataform"

func TestMinio(t *testing.T) {
	ctx := context.Background()

	minioContainer, err := tcminio.Run(ctx, "minio/minio:RELEASE.2024-01-16T16-07-38Z")
	require.NoError(t, err, "failed to make minio container")
	defer func() {
		require.NoError(t, testcontainers.TerminateContainer(minioContainer))
	}()

	endpoint, err := minioContainer.ConnectionString(ctx)
	require.NoError(t, err, "failed to get endpoint")

	client, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(minioContainer.Username, minioContainer.Password, ""),
	})
	require.NoError(t, err, "failed to make minio client")

	uploader, err := upload.NewMinioUploader(
		endpoint,
		minioContainer.Username,
		minioContainer.Password,
		false,
		bucket,
	)
	require.NoError(t, err, "failed to construct uploader")

	t.Run("CheckMissingBucket", func(t *testing.T) {
		err := uploader.Check(ctx)
		require.Error(t, err)

		var storeErr *upload.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "NoSuchBucket", storeErr.Code)
	})

	require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))

	t.Run("Check", func(t *testing.T) {
		require.NoError(t, uploader.Check(ctx))
	})

	t.Run("Upload", func(t *testing.T) {
		name := "data/k1_20261016_0930.json"
		expected := "{\n  \"key\": \"k1\"\n}"

		err := uploader.Upload(ctx, strings.NewReader(expected), int64(len(expected)), name, "application/json")
		require.NoError(t, err, "failed to upload")

		obj, err := client.GetObject(ctx, bucket, name, minio.GetObjectOptions{})
		require.NoError(t, err)
		defer obj.Close()

		content, err := io.ReadAll(obj)
		require.NoError(t, err)
		assert.Equal(t, expected, string(content))

		stat, err := obj.Stat()
		require.NoError(t, err)
		assert.Equal(t, "application/json", stat.ContentType)
	})
}
