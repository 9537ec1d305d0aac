package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"kboard/apperr"
	"kboard/models"
	"kboard/utilities"

	gcs "cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
)

const maxAvatarBytes = 5 << 20

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// AvatarStorage keeps user photos in a Cloud Storage bucket.
type AvatarStorage struct {
	bucket  *gcs.BucketHandle
	baseURL string
	newID   func() uuid.UUID
}

// NewAvatarStorage opens the app's default bucket. Object URLs are baseURL
// followed by the object key; an empty baseURL uses the public
// storage.googleapis.com address of the bucket.
func NewAvatarStorage(ctx context.Context, app *firebase.App, bucketName, baseURL string) (*AvatarStorage, error) {
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com/" + bucketName + "/"
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &AvatarStorage{bucket: bucket, baseURL: baseURL, newID: uuid.New}, nil
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// objectKey builds "<name>-<uuid><ext>" from an uploaded filename.
func objectKey(filename string, id uuid.UUID) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(path.Ext(base))
	name := unsafeKeyChars.ReplaceAllString(strings.TrimSuffix(base, path.Ext(base)), "_")
	name = strings.Trim(name, "_")
	if name == "" {
		name = "avatar"
	}
	return name + "-" + id.String() + ext
}

// keyFromURL returns the object key of url, or false when url does not point
// into the bucket.
func keyFromURL(baseURL, url string) (string, bool) {
	if !strings.HasPrefix(url, baseURL) {
		return "", false
	}
	key := strings.TrimPrefix(url, baseURL)
	return key, key != ""
}

func checkAvatar(file models.Upload) error {
	if file.Body == nil {
		return apperr.New(apperr.KindBadRequest, "Photo is empty")
	}
	if file.Size > maxAvatarBytes {
		return apperr.Newf(apperr.KindBadRequest, "Photo exceeds %d bytes", maxAvatarBytes)
	}
	if file.ContentType != "" && !allowedAvatarTypes[file.ContentType] {
		return apperr.Newf(apperr.KindBadRequest, "Unsupported photo type: %s", file.ContentType)
	}
	return nil
}

// Upload writes file to the bucket and returns its public URL.
func (s *AvatarStorage) Upload(ctx context.Context, file models.Upload) (string, error) {
	if err := checkAvatar(file); err != nil {
		return "", err
	}
	key := objectKey(file.Filename, s.newID())

	w := s.bucket.Object(key).NewWriter(ctx)
	w.ContentType = file.ContentType
	if _, err := io.Copy(w, io.LimitReader(file.Body, maxAvatarBytes+1)); err != nil {
		w.Close()
		return "", apperr.Internal("upload avatar", err)
	}
	if err := w.Close(); err != nil {
		return "", apperr.Internal("upload avatar", err)
	}

	utilities.LogDebug("Uploaded avatar %s", key)
	return s.baseURL + key, nil
}

// Remove deletes the object behind url. URLs outside the bucket and objects
// that are already gone are ignored.
func (s *AvatarStorage) Remove(ctx context.Context, url string) error {
	key, ok := keyFromURL(s.baseURL, url)
	if !ok {
		utilities.LogWarn("Not removing avatar outside bucket: %s", url)
		return nil
	}
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete avatar %s: %w", key, err)
	}
	return nil
}
