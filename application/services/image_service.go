package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"triptrek-backend/application/ports"
	"triptrek-backend/domain/config"
	"triptrek-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadRequest asks for somewhere to put a new image. TripID takes
// precedence over LocationName when choosing the object key.
type UploadRequest struct {
	FileType     string
	LocationName string
	TripID       string
}

// UploadTicket is a pre-signed upload slot
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	ImageURL  string `json:"imageUrl"`
	ImageID   string `json:"imageId"`
	Key       string `json:"key"`
	ExpiresIn int    `json:"expiresIn"`
}

// ImageService issues pre-signed S3 upload URLs so browsers can upload
// images directly to the bucket
type ImageService struct {
	signer ports.UploadSigner
	cfg    *config.DomainConfig
	logger *zap.Logger
	newID  func() string
}

// NewImageService creates a new image service. A nil signer leaves uploads
// disabled.
func NewImageService(signer ports.UploadSigner, cfg *config.DomainConfig, logger *zap.Logger) *ImageService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &ImageService{
		signer: signer,
		cfg:    cfg,
		logger: logger,
		newID:  func() string { return uuid.New().String() },
	}
}

// RequestUpload allocates an object key and pre-signs a PUT for it
func (s *ImageService) RequestUpload(ctx context.Context, req UploadRequest) (*UploadTicket, error) {
	if s.signer == nil {
		return nil, errors.ErrUploadNotConfigured
	}

	fileType := strings.ToLower(strings.TrimSpace(req.FileType))
	if !s.cfg.IsAllowedImageType(fileType) {
		return nil, errors.ErrUnsupportedFileType.
			Derive(fmt.Sprintf("file type %q is not an accepted image type", req.FileType)).
			WithDetail("fileType", req.FileType)
	}

	imageID := s.newID()
	name := imageID + "." + s.extension(fileType)

	var key string
	switch {
	case req.TripID != "":
		key = "locations/" + req.TripID + "/" + name
	case strings.TrimSpace(req.LocationName) != "":
		key = "uploads/" + escapePathSegment(req.LocationName) + "/" + name
	default:
		return nil, errors.NewValidationError("locationName or tripId is required")
	}

	uploadURL, err := s.signer.PresignPut(ctx, key, fileType, s.cfg.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}

	s.logger.Debug("Issued upload URL",
		zap.String("key", key),
		zap.String("fileType", fileType),
	)

	return &UploadTicket{
		UploadURL: uploadURL,
		ImageURL:  s.signer.ObjectURL(key),
		ImageID:   imageID,
		Key:       key,
		ExpiresIn: int(s.cfg.UploadURLExpiry.Seconds()),
	}, nil
}

// extension takes the MIME subtype, so image/png becomes png
func (s *ImageService) extension(fileType string) string {
	if i := strings.IndexByte(fileType, '/'); i >= 0 && i < len(fileType)-1 {
		return fileType[i+1:]
	}
	return s.cfg.DefaultImageExt
}

// escapePathSegment escapes a location name the way browsers escape a URI
// component, with spaces as %20
func escapePathSegment(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// UploadedImage identifies a gallery image from its object key
type UploadedImage struct {
	LocationName string
	ImageID      string
}

// ParseUploadKey reverses the gallery key layout uploads/{location}/{id}.{ext}.
// Keys outside that layout, including trip cover images, report false.
func ParseUploadKey(key string) (UploadedImage, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != "uploads" || parts[1] == "" || parts[2] == "" {
		return UploadedImage{}, false
	}

	location, err := url.PathUnescape(parts[1])
	if err != nil || location == "" {
		return UploadedImage{}, false
	}

	imageID := parts[2]
	if i := strings.LastIndexByte(imageID, '.'); i > 0 {
		imageID = imageID[:i]
	}

	return UploadedImage{LocationName: location, ImageID: imageID}, true
}
