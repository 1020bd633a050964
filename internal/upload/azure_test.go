package upload_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/azure/azurite"

	"github.com/aixcyberchallenge/data-form/internal/upload"
)

const container = "dataform"

func TestAzure(t *testing.T) {
	ctx := context.Background()

	azuriteContainer, err := azurite.Run(
		ctx,
		"mcr.microsoft.com/azure-storage/azurite:latest",
		azurite.WithInMemoryPersistence(256),
	)
	require.NoError(t, err, "failed to make azurite container")
	defer func() {
		require.NoError(t, testcontainers.TerminateContainer(azuriteContainer))
	}()

	cred, err := azblob.NewSharedKeyCredential(azurite.AccountName, azurite.AccountKey)
	require.NoError(t, err, "failed to get creds")

	serviceURL, err := azuriteContainer.BlobServiceURL(ctx)
	require.NoError(t, err, "failed to get serviceURL")
	serviceURL = fmt.Sprintf("%s/%s", serviceURL, azurite.AccountName)

	azclient, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	require.NoError(t, err, "failed to make azure blob client")

	uploader, err := upload.NewAzureUploader(
		azurite.AccountName,
		azurite.AccountKey,
		serviceURL,
		container,
	)
	require.NoError(t, err, "failed to construct uploader")

	t.Run("CheckMissingContainer", func(t *testing.T) {
		err := uploader.Check(ctx)
		require.Error(t, err)

		var storeErr *upload.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "ContainerNotFound", storeErr.Code)
	})

	_, err = azclient.CreateContainer(ctx, container, nil)
	require.NoError(t, err, "failed to make container")

	t.Run("Check", func(t *testing.T) {
		require.NoError(t, uploader.Check(ctx))
	})

	t.Run("Upload", func(t *testing.T) {
		name := "data/" + uuid.NewString() + ".json"
		expected := `{"key": "abc"}`
		err := uploader.Upload(
			ctx,
			strings.NewReader(expected),
			int64(len(expected)),
			name,
			"application/json",
		)
		require.NoError(t, err, "failed to upload file")

		buffer := make([]byte, len(expected))
		_, err = azclient.DownloadBuffer(ctx, container, name, buffer, nil)
		require.NoError(t, err, "failed to download file to buffer")

		assert.Equal(t, expected, string(buffer), "content of file should match")

		props, err := azclient.ServiceClient().
			NewContainerClient(container).
			NewBlobClient(name).
			GetProperties(ctx, nil)
		require.NoError(t, err)
		require.NotNil(t, props.ContentType)
		assert.Equal(t, "application/json", *props.ContentType)
	})

	t.Run("StoreIdentifier", func(t *testing.T) {
		ident, err := uploader.StoreIdentifier(ctx)
		require.NoError(t, err)
		assert.Equal(t, container, ident)
	})
}

func TestNewAzureUploaderRequiresContainer(t *testing.T) {
	_, err := upload.NewAzureUploader(azurite.AccountName, azurite.AccountKey, "http://127.0.0.1:10000/devstoreaccount1", "")
	require.Error(t, err)
}
