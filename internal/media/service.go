package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
)

type gcsClient interface {
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
}

// Service issues presigned upload URLs. Clients PUT directly to storage;
// the backend never proxies file bytes.
type Service interface {
	PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error)
}

type service struct {
	gcs            gcsClient
	bucket         string
	uploadTTL      time.Duration
	maxUploadBytes int64
}

// NewService constructs a media service backed by the provided GCS signer.
func NewService(gcsClient gcsClient, gcsCfg config.GCSConfig, mediaCfg config.MediaConfig) (Service, error) {
	if gcsClient == nil {
		return nil, fmt.Errorf("gcs client required")
	}
	if gcsCfg.BucketName == "" {
		return nil, fmt.Errorf("gcs bucket required")
	}
	if gcsCfg.UploadURLExpiry <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	if mediaCfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("max upload size must be positive")
	}
	return &service{
		gcs:            gcsClient,
		bucket:         gcsCfg.BucketName,
		uploadTTL:      gcsCfg.UploadURLExpiry,
		maxUploadBytes: int64(mediaCfg.MaxUploadMB) * 1024 * 1024,
	}, nil
}

// PresignInput models the payload required to request an upload URL.
type PresignInput struct {
	Kind      enums.MediaKind
	MimeType  string
	FileName  string
	SizeBytes int64
}

// PresignOutput contains the upload URL and the key the object will land at.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) PresignUpload(ctx context.Context, input PresignInput) (*PresignOutput, error) {
	if input.Kind == "" || !input.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid media kind")
	}

	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file_name is required")
	}

	if input.SizeBytes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "size_bytes must be positive")
	}
	if input.SizeBytes > s.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("size_bytes must be ≤ %d bytes", s.maxUploadBytes))
	}

	mimeType, err := sniffMimeType(input.MimeType)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "mime_type is required")
	}
	if !isAllowedMime(input.Kind, mimeType) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("%s uploads accept %s", input.Kind, allowedMimeDescription(input.Kind)))
	}

	objectKey := buildObjectKey(input.Kind, uuid.New(), fileName)
	signedURL, err := s.gcs.SignedURL(s.bucket, objectKey, mimeType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    objectKey,
		SignedPUTURL: signedURL,
		ContentType:  mimeType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

func buildObjectKey(kind enums.MediaKind, id uuid.UUID, fileName string) string {
	cleanName := sanitizeFileName(fileName)
	if cleanName == "" {
		cleanName = id.String()
	}
	return fmt.Sprintf("media/%s/%s/%s", kind, id.String(), cleanName)
}

func sanitizeFileName(name string) string {
	if name == "" {
		return ""
	}
	clean := path.Base(strings.TrimSpace(name))
	if clean == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(clean))
	for _, r := range clean {
		switch {
		case r == '/' || r == '\\' || unicode.IsControl(r):
			continue
		case unicode.IsSpace(r):
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "-_.")
}
