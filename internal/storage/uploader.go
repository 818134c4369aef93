package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// Uploader stores listing images. The interface exists so services can be
// tested against an in-memory fake.
type Uploader interface {
	// Upload writes data under category/ownerUID/<random>.jpg and returns
	// the public download URL and the object path.
	Upload(ctx context.Context, category, ownerUID string, data []byte, contentType string) (downloadURL, objectPath string, err error)
	// Delete removes a previously uploaded object. Used to compensate
	// when a record write fails after its image upload succeeded.
	Delete(ctx context.Context, objectPath string) error
	// DeleteAllFor removes every object under category/ownerUID/. Used
	// when an account is deleted so no orphaned images stay behind.
	DeleteAllFor(ctx context.Context, category, ownerUID string) error
}

type gcsUploader struct {
	client *gcs.Client
	bucket string
}

func NewGCSUploader(client *gcs.Client, bucket string) Uploader {
	return &gcsUploader{client: client, bucket: bucket}
}

func (u *gcsUploader) Upload(ctx context.Context, category, ownerUID string, data []byte, contentType string) (string, string, error) {
	if contentType == "" {
		contentType = "image/jpeg"
	}
	objectPath := path.Join(category, ownerUID, uuid.NewString()+".jpg")
	token := uuid.NewString()

	obj := u.client.Bucket(u.bucket).Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", "", err
	}
	if err := w.Close(); err != nil {
		return "", "", err
	}

	escapedPath := url.PathEscape(objectPath)
	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucket, escapedPath, token)
	return publicURL, objectPath, nil
}

func (u *gcsUploader) Delete(ctx context.Context, objectPath string) error {
	return u.client.Bucket(u.bucket).Object(objectPath).Delete(ctx)
}

func (u *gcsUploader) DeleteAllFor(ctx context.Context, category, ownerUID string) error {
	prefix := path.Join(category, ownerUID) + "/"
	bucket := u.client.Bucket(u.bucket)
	it := bucket.Objects(ctx, &gcs.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		if err := bucket.Object(attrs.Name).Delete(ctx); err != nil {
			return err
		}
	}
}
