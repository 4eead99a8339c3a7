package storage

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/dedicart/gateway/src/utils/config"
	"github.com/dedicart/gateway/src/utils/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// Object is missing from the bucket
var ErrNotFound = errors.New("object not found")

// Client wraps the S3 compatible store holding both the provisional (temp/)
// and the permanent (final/) namespaces.
type Client struct {
	client *minio.Client
	config *config.Storage
	log    *logrus.Entry
}

func NewClient(config *config.Storage) (self *Client, err error) {
	self = new(Client)
	self.config = config
	self.log = logger.NewSublogger("storage")

	self.client, err = minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return
}

// Downloads the object and its content type
func (self *Client) Get(ctx context.Context, key string) (data []byte, contentType string, err error) {
	object, err := self.client.GetObject(ctx, self.config.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", self.wrapErr(err, key)
	}
	defer object.Close()

	info, err := object.Stat()
	if err != nil {
		return nil, "", self.wrapErr(err, key)
	}

	data, err = io.ReadAll(object)
	if err != nil {
		return nil, "", self.wrapErr(err, key)
	}

	return data, info.ContentType, nil
}

// Uploads the object preserving its content type
func (self *Client) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	_, err = self.client.PutObject(ctx, self.config.Bucket, key,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType})
	return self.wrapErr(err, key)
}

func (self *Client) Remove(ctx context.Context, key string) (err error) {
	return self.wrapErr(self.client.RemoveObject(ctx, self.config.Bucket, key, minio.RemoveObjectOptions{}), key)
}

func (self *Client) wrapErr(err error, key string) error {
	if err == nil {
		return nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	self.log.WithError(err).WithField("key", key).Error("Storage operation failed")
	return err
}
