package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/sirupsen/logrus"
)

// Store wraps the Cloudinary client. Only the retrieval URL and public id of
// an uploaded object are persisted by callers.
type Store struct {
	cld *cloudinary.Cloudinary
}

// UploadResult holds what callers persist about an uploaded object.
type UploadResult struct {
	URL      string
	PublicID string
	Bytes    int
	Format   string
}

// NewStore initializes a Cloudinary-backed media store.
func NewStore(cloudName, apiKey, apiSecret string) (*Store, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %v", err)
	}
	return &Store{cld: cld}, nil
}

// Upload pushes the file into the given folder and returns its URL and id.
func (s *Store) Upload(ctx context.Context, file io.Reader, folder string) (*UploadResult, error) {
	resp, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		logrus.WithError(err).WithField("folder", folder).Error("Cloudinary upload failed")
		return nil, fmt.Errorf("failed to upload file: %v", err)
	}

	return &UploadResult{
		URL:      resp.SecureURL,
		PublicID: resp.PublicID,
		Bytes:    resp.Bytes,
		Format:   resp.Format,
	}, nil
}

// Destroy removes the backing object by its public id.
func (s *Store) Destroy(ctx context.Context, publicID string) error {
	_, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		logrus.WithError(err).WithField("publicID", publicID).Error("Cloudinary destroy failed")
		return fmt.Errorf("failed to delete file: %v", err)
	}
	return nil
}

// PublicIDFromURL derives the public id from a delivery URL by locating the
// known folder segment. Returns "" when the folder is not present.
func PublicIDFromURL(url, folder string) string {
	marker := "/" + folder + "/"
	idx := strings.Index(url, marker)
	if idx < 0 {
		return ""
	}
	id := url[idx+1:]
	if dot := strings.LastIndex(id, "."); dot > 0 {
		id = id[:dot]
	}
	return id
}
