package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/challanai/invoice-chat-service/internal/models"
	"github.com/challanai/invoice-chat-service/internal/render"
)

const presignExpiry = 24 * time.Hour

// Archive keeps a PDF and a JSON snapshot of every invoice in a MinIO bucket
type Archive struct {
	client *minio.Client
	bucket string
}

// New connects to MinIO and verifies the bucket exists
func New(ctx context.Context, cfg models.StorageConfig) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", cfg.Bucket)
	}

	return &Archive{client: client, bucket: cfg.Bucket}, nil
}

// ObjectName returns the object path of an invoice artifact.
// Path format: {businessID}/YYYY/MM/{invoiceName}.{ext}
func ObjectName(businessID string, inv *models.Invoice, ext string) string {
	return fmt.Sprintf("%s/%d/%02d/%s.%s",
		businessID,
		inv.CreatedAt.Year(),
		inv.CreatedAt.Month(),
		inv.InvoiceName,
		ext,
	)
}

// Archive uploads the rendered PDF and the JSON document of inv
func (a *Archive) Archive(ctx context.Context, businessID string, inv *models.Invoice) error {
	pdf, err := render.InvoicePDF(inv)
	if err != nil {
		return err
	}
	if err := a.put(ctx, ObjectName(businessID, inv, "pdf"), pdf, "application/pdf"); err != nil {
		return err
	}

	doc, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode invoice: %w", err)
	}
	return a.put(ctx, ObjectName(businessID, inv, "json"), doc, "application/json")
}

func (a *Archive) put(ctx context.Context, objectName string, data []byte, contentType string) error {
	_, err := a.client.PutObject(ctx, a.bucket, objectName, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", objectName, err)
	}
	return nil
}

// PresignedPDF generates a presigned URL for downloading the PDF of inv
func (a *Archive) PresignedPDF(ctx context.Context, businessID string, inv *models.Invoice) (string, error) {
	url, err := a.client.PresignedGetObject(ctx, a.bucket, ObjectName(businessID, inv, "pdf"), presignExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return url.String(), nil
}

// Ping checks the bucket is reachable
func (a *Archive) Ping(ctx context.Context) error {
	_, err := a.client.BucketExists(ctx, a.bucket)
	return err
}
