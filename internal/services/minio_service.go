package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"garageflow/internal/models"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ArchiveService keeps a retention copy of finalized invoices in object storage
type ArchiveService interface {
	ArchiveInvoice(ctx context.Context, invoice *models.Invoice) (string, error)
	GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context) error
}

// objectStore is the part of *minio.Client the archive uses
type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
}

type minioArchive struct {
	client objectStore
	bucket string
}

func NewMinioArchiveService(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (ArchiveService, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioArchive{client: client, bucket: bucket}, nil
}

// InvoiceObjectName is {workshop}/{year}/{invoice number}.json
func InvoiceObjectName(invoice *models.Invoice) string {
	return fmt.Sprintf("%s/%d/%s.json", invoice.WorkshopID, invoice.CreatedAt.UTC().Year(), invoice.InvoiceNumber)
}

func (m *minioArchive) ArchiveInvoice(ctx context.Context, invoice *models.Invoice) (string, error) {
	data, err := json.Marshal(invoice)
	if err != nil {
		return "", fmt.Errorf("failed to encode invoice: %w", err)
	}

	objectName := InvoiceObjectName(invoice)
	_, err = m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
		UserMetadata: map[string]string{
			"invoice-id": invoice.ID.String(),
			"status":     string(invoice.Status),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive invoice %s: %w", invoice.InvoiceNumber, err)
	}
	return objectName, nil
}

func (m *minioArchive) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (m *minioArchive) EnsureBucketExists(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
