package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azqueue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/azure/azurite"

	"github.com/aixcyberchallenge/data-form/internal/config"
	"github.com/aixcyberchallenge/data-form/internal/hash"
	"github.com/aixcyberchallenge/data-form/internal/types"
	"github.com/aixcyberchallenge/data-form/internal/upload"
)

const (
	containerName = "dataform"
	queueName     = "stored"
)

var receivedAt = time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)

// Runs the data API against azurite blob and queue services
type DataAPISuite struct {
	suite.Suite

	container   testcontainers.Container
	blobs       *azblob.Client
	queueClient *azqueue.QueueClient
	server      *httptest.Server
}

func (s *DataAPISuite) SetupSuite() {
	ctx := context.Background()
	t := s.T()

	azuriteContainer, err := azurite.Run(
		ctx,
		"mcr.microsoft.com/azure-storage/azurite:latest",
		azurite.WithInMemoryPersistence(256),
	)
	require.NoError(t, err, "failed to make azurite container")
	s.container = azuriteContainer

	blobURL, err := azuriteContainer.BlobServiceURL(ctx)
	require.NoError(t, err)
	blobURL = fmt.Sprintf("%s/%s", blobURL, azurite.AccountName)

	queueURL, err := azuriteContainer.QueueServiceURL(ctx)
	require.NoError(t, err)
	queueURL = fmt.Sprintf("%s/%s", queueURL, azurite.AccountName)

	blobCred, err := azblob.NewSharedKeyCredential(azurite.AccountName, azurite.AccountKey)
	require.NoError(t, err)
	s.blobs, err = azblob.NewClientWithSharedKeyCredential(blobURL, blobCred, nil)
	require.NoError(t, err)
	_, err = s.blobs.CreateContainer(ctx, containerName, nil)
	require.NoError(t, err)

	queueCred, err := azqueue.NewSharedKeyCredential(azurite.AccountName, azurite.AccountKey)
	require.NoError(t, err)
	queueService, err := azqueue.NewServiceClientWithSharedKeyCredential(queueURL, queueCred, nil)
	require.NoError(t, err)
	s.queueClient = queueService.NewQueueClient(queueName)
	_, err = s.queueClient.Create(ctx, nil)
	require.NoError(t, err)

	cfg := &config.ServerConfig{
		Storage: &config.StorageConfig{
			Backend: "azure",
			Azure: &config.AzureStorageAccountConfig{
				Name:      azurite.AccountName,
				Key:       azurite.AccountKey,
				BlobURL:   blobURL,
				Container: containerName,
				QueueURL:  queueURL,
				Queue:     queueName,
			},
		},
		Notifications: &config.NotificationsConfig{Enabled: true},
		ListenAddress: "127.0.0.1:0",
		AllowOrigins:  []string{"*"},
	}

	store, err := newStore(cfg.Storage)
	require.NoError(t, err)
	notifier, err := newNotifier(cfg)
	require.NoError(t, err)
	require.NotNil(t, notifier)

	router := buildRouter(cfg, upload.NewRetryUploader(store), notifier, nil, func() time.Time { return receivedAt })
	s.server = httptest.NewServer(router)
}

func (s *DataAPISuite) TearDownSuite() {
	if s.server != nil {
		s.server.Close()
	}
	if s.container != nil {
		s.Require().NoError(testcontainers.TerminateContainer(s.container))
	}
}

func (s *DataAPISuite) TestStoreAndNotify() {
	ctx := context.Background()
	t := s.T()

	body := `{"key":"k1","value":"v1","category":"","description":"","timestamp":"2026-10-16T09:29:59.999Z"}`
	resp, err := http.Post(s.server.URL+"/data", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var saved types.SaveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&saved))
	assert.Equal(t, "data/k1_20261016_0930.json", saved.S3Key)
	assert.Equal(t, containerName, saved.Bucket)

	download, err := s.blobs.DownloadStream(ctx, containerName, saved.S3Key, nil)
	require.NoError(t, err)
	defer download.Body.Close()
	stored, err := io.ReadAll(download.Body)
	require.NoError(t, err)

	var record types.Submission
	require.NoError(t, json.Unmarshal(stored, &record))
	assert.Equal(t, "v1", record.Value)

	msgs, err := s.queueClient.DequeueMessage(ctx, nil)
	require.NoError(t, err)
	require.Len(t, msgs.Messages, 1)

	var notification types.StoredNotification
	require.NoError(t, json.Unmarshal([]byte(*msgs.Messages[0].MessageText), &notification))
	assert.Equal(t, saved.S3Key, notification.ObjectName)
	assert.Equal(t, hash.Buffer(stored), notification.SHA256)
}

func (s *DataAPISuite) TestStatus() {
	resp, err := http.Get(s.server.URL + "/data")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var status types.StatusResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&status))
	s.Equal(containerName, status.Bucket)
}

func TestDataAPISuite(t *testing.T) {
	suite.Run(t, new(DataAPISuite))
}

func TestRedisAddr(t *testing.T) {
	assert.Equal(t, "localhost:6379", redisAddr("localhost"))
	assert.Equal(t, "redis:6380", redisAddr("redis:6380"))
}

func TestNewNotifierDisabled(t *testing.T) {
	notifier, err := newNotifier(&config.ServerConfig{})
	require.NoError(t, err)
	assert.Nil(t, notifier)

	_, err = newNotifier(&config.ServerConfig{
		Storage:       &config.StorageConfig{Backend: "s3"},
		Notifications: &config.NotificationsConfig{Enabled: true},
	})
	require.Error(t, err)
}
