package upload_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/aixcyberchallenge/data-form/internal/upload"
	mockuploader "github.com/aixcyberchallenge/data-form/internal/upload/mock"
)

const contentType = "application/json"

func fastBackoff() retry.Backoff {
	b := retry.NewConstant(time.Millisecond * 10)
	b = retry.WithMaxRetries(3, b)
	return b
}

func TestStoreIdentifier(t *testing.T) {
	t.Run("NoError", func(t *testing.T) {
		ctx := context.Background()
		expected := "identifier"

		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		u.EXPECT().StoreIdentifier(gomock.Any()).Return(expected, nil).Times(1)

		actual, err := upload.NewRetryUploader(u).StoreIdentifier(ctx)
		require.NoError(t, err, "failed to get store identifier")

		assert.Equal(t, expected, actual, "not matching identifier")
	})

	t.Run("Error", func(t *testing.T) {
		ctx := context.Background()

		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		u.EXPECT().StoreIdentifier(gomock.Any()).Return("", errors.New("expected error")).Times(4)

		_, err := upload.NewRetryUploaderBackoff(u, fastBackoff).StoreIdentifier(ctx)
		require.Error(t, err, "somehow did not get error")
	})
}

func TestUpload(t *testing.T) {
	t.Run("NoError", func(t *testing.T) {
		ctx := context.Background()

		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		reader := strings.NewReader(`{"key":"k"}`)
		name := "data/k_20261016_0930.json"

		u.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Eq(int64(reader.Len())), gomock.Eq(name), gomock.Eq(contentType)).
			Return(nil).
			Times(1)

		err := upload.NewRetryUploader(u).Upload(ctx, reader, int64(reader.Len()), name, contentType)
		require.NoError(t, err, "failed to upload")
	})

	t.Run("ErrorAfter1TryRewinds", func(t *testing.T) {
		ctx := context.Background()

		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		content := `{"key":"k"}`
		reader := strings.NewReader(content)
		name := "data/k_20261016_0930.json"

		counter := 0
		u.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(name), gomock.Any()).
			DoAndReturn(func(_ context.Context, r io.ReadSeeker, _ int64, _, _ string) error {
				counter++
				read, err := io.ReadAll(r)
				require.NoError(t, err)
				assert.Equal(t, content, string(read), "every attempt sees the whole body")

				if counter == 2 {
					return nil
				}
				return errors.New("expected error")
			}).
			Times(2)

		err := upload.NewRetryUploader(u).Upload(ctx, reader, int64(reader.Len()), name, contentType)
		require.NoError(t, err, "failed to upload")
	})

	t.Run("Error", func(t *testing.T) {
		ctx := context.Background()

		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		reader := strings.NewReader("hello there")

		u.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("expected error")).
			Times(4)

		err := upload.NewRetryUploaderBackoff(u, fastBackoff).
			Upload(ctx, reader, int64(reader.Len()), "name", contentType)
		require.Error(t, err, "somehow uploaded")
	})
}

func TestCheck(t *testing.T) {
	t.Run("NoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		u.EXPECT().Check(gomock.Any()).Return(nil).Times(1)

		require.NoError(t, upload.NewRetryUploader(u).Check(context.Background()))
	})

	t.Run("TransientRetried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		gomock.InOrder(
			u.EXPECT().Check(gomock.Any()).Return(&upload.StoreError{Code: upload.CodeUnknown}),
			u.EXPECT().Check(gomock.Any()).Return(nil),
		)

		require.NoError(t, upload.NewRetryUploaderBackoff(u, fastBackoff).Check(context.Background()))
	})

	t.Run("CodedNotRetried", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		u.EXPECT().Check(gomock.Any()).Return(&upload.StoreError{Code: "NoSuchBucket"}).Times(1)

		err := upload.NewRetryUploaderBackoff(u, fastBackoff).Check(context.Background())
		require.Error(t, err)

		var storeErr *upload.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "NoSuchBucket", storeErr.Code)
	})
}
