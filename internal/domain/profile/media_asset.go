package profile

import (
	"strings"
	"time"

	"github.com/nilmarket/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MediaKind classifies a media kit asset
type MediaKind string

const (
	MediaKindImage MediaKind = "IMAGE"
	MediaKindVideo MediaKind = "VIDEO"
)

// IsValid checks if the kind is a valid MediaKind
func (k MediaKind) IsValid() bool {
	return k == MediaKindImage || k == MediaKindVideo
}

// String returns the string representation of MediaKind
func (k MediaKind) String() string {
	return string(k)
}

// MediaAssetStatus tracks the upload-intent flow: an asset is created
// before the client uploads to object storage, then confirmed after
type MediaAssetStatus string

const (
	MediaAssetStatusPendingUpload MediaAssetStatus = "PENDING_UPLOAD"
	MediaAssetStatusReady         MediaAssetStatus = "READY"
	MediaAssetStatusRemoved       MediaAssetStatus = "REMOVED"
)

// allowed content types per media kind
var allowedContentTypes = map[MediaKind][]string{
	MediaKindImage: {"image/jpeg", "image/png", "image/webp"},
	MediaKindVideo: {"video/mp4", "video/quicktime", "video/webm"},
}

// MediaAsset represents one media kit entry belonging to a profile
type MediaAsset struct {
	ID          uuid.UUID
	ProfileID   uuid.UUID
	Kind        MediaKind
	Title       string
	ObjectKey   string
	ContentType string
	SizeBytes   int64
	Status      MediaAssetStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ConfirmedAt *time.Time
}

// NewMediaAsset creates a media asset in PENDING_UPLOAD state
// The caller uploads to objectKey and then confirms the asset
func NewMediaAsset(profileID uuid.UUID, kind MediaKind, title, objectKey, contentType string) (*MediaAsset, error) {
	if profileID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROFILE", "Profile ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_MEDIA_KIND", "Media kind must be IMAGE or VIDEO")
	}
	if objectKey == "" {
		return nil, shared.NewDomainError("INVALID_OBJECT_KEY", "Object key cannot be empty")
	}
	if !isAllowedContentType(kind, contentType) {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type not allowed for this media kind")
	}

	now := time.Now()
	return &MediaAsset{
		ID:          uuid.New(),
		ProfileID:   profileID,
		Kind:        kind,
		Title:       strings.TrimSpace(title),
		ObjectKey:   objectKey,
		ContentType: contentType,
		Status:      MediaAssetStatusPendingUpload,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func isAllowedContentType(kind MediaKind, contentType string) bool {
	for _, ct := range allowedContentTypes[kind] {
		if ct == contentType {
			return true
		}
	}
	return false
}

// Confirm marks the asset as uploaded and ready to serve
func (a *MediaAsset) Confirm(sizeBytes int64) error {
	if a.Status != MediaAssetStatusPendingUpload {
		return shared.NewDomainError("INVALID_STATE", "Only pending assets can be confirmed")
	}
	if sizeBytes <= 0 {
		return shared.NewDomainError("INVALID_SIZE", "Asset size must be positive")
	}

	now := time.Now()
	a.SizeBytes = sizeBytes
	a.Status = MediaAssetStatusReady
	a.ConfirmedAt = &now
	a.UpdatedAt = now

	return nil
}

// Remove marks the asset as removed; the object is garbage collected later
func (a *MediaAsset) Remove() error {
	if a.Status == MediaAssetStatusRemoved {
		return shared.NewDomainError("INVALID_STATE", "Asset is already removed")
	}
	a.Status = MediaAssetStatusRemoved
	a.UpdatedAt = time.Now()
	return nil
}

// IsReady returns true if the asset has been uploaded and confirmed
func (a *MediaAsset) IsReady() bool {
	return a.Status == MediaAssetStatusReady
}
