package network

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/op/go-logging"
)

/*
   MinioClientInterface lists the object-level minio calls the store
   makes, so we can mock them in tests. See
   https://min.io/docs/minio/linux/developers/go/API.html

   The pipeline only stats, reads, copies and removes objects. It never
   creates buckets or changes their policies, and it shouldn't be able
   to.
*/
type MinioClientInterface interface {
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
}

// NewMinioClient returns a client for any S3-compatible endpoint. For
// Google Cloud Storage, host is storage.googleapis.com and the key and
// secret are an HMAC key pair.
func NewMinioClient(host, keyID, secretKey, region string, useSSL bool) (*minio.Client, error) {
	return minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(keyID, secretKey, ""),
		Secure:       useSSL,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
}

// MinioStore moves log files between buckets.
type MinioStore struct {
	client MinioClientInterface
	logger *logging.Logger
}

func NewMinioStore(client MinioClientInterface, logger *logging.Logger) *MinioStore {
	return &MinioStore{
		client: client,
		logger: logger,
	}
}

// Exists returns true if objectID exists in bucket. A missing object
// is not an error.
func (s *MinioStore) Exists(ctx context.Context, bucket, objectID string) (bool, error) {
	_, err := s.client.StatObject(ctx, bucket, objectID, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if IsNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s/%s: %w", bucket, objectID, err)
}

// Download returns the full content of the object. Storage logs are
// a couple of lines long, so reading them into memory is fine.
func (s *MinioStore) Download(ctx context.Context, bucket, objectID string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, bucket, objectID, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", bucket, objectID, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read %s/%s: %w", bucket, objectID, err)
	}
	s.logger.Debugf("Downloaded %d bytes from %s/%s", len(data), bucket, objectID)
	return data, nil
}

// Move copies objectID from srcBucket to dstBucket under the same name,
// then removes the original. If the copy succeeds and the remove fails,
// the object exists in both buckets and the error says so.
func (s *MinioStore) Move(ctx context.Context, srcBucket, objectID, dstBucket string) error {
	dst := minio.CopyDestOptions{
		Bucket: dstBucket,
		Object: objectID,
	}
	src := minio.CopySrcOptions{
		Bucket: srcBucket,
		Object: objectID,
	}
	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return fmt.Errorf("copy %s/%s to %s: %w", srcBucket, objectID, dstBucket, err)
	}
	if err := s.client.RemoveObject(ctx, srcBucket, objectID, minio.RemoveObjectOptions{}); err != nil {
		s.logger.Errorf("Copied %s/%s to %s but could not remove the original: %v",
			srcBucket, objectID, dstBucket, err)
		return fmt.Errorf("remove %s/%s after copy to %s: %w", srcBucket, objectID, dstBucket, err)
	}
	s.logger.Infof("Moved %s/%s to %s", srcBucket, objectID, dstBucket)
	return nil
}

// Delete removes objectID from bucket.
func (s *MinioStore) Delete(ctx context.Context, bucket, objectID string) error {
	if err := s.client.RemoveObject(ctx, bucket, objectID, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s/%s: %w", bucket, objectID, err)
	}
	s.logger.Infof("Deleted %s/%s", bucket, objectID)
	return nil
}

// IsNotFound returns true if err is S3's way of saying the object
// isn't there. A missing bucket is a configuration problem, not a
// missing object.
func IsNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	if resp.Code == "NoSuchBucket" {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
