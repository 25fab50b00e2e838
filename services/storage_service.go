package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"hostelswap_server/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// allowedProofTypes are the content types accepted for room-proof uploads
var allowedProofTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}

var allowedPictureTypes = []string{"image/jpeg", "image/png", "image/webp"}

const presignedUploadExpiry = 5 * time.Minute

// FileStorage stores uploaded files and hands out URLs for them
type FileStorage interface {
	Save(ctx context.Context, key, contentType string, body io.Reader) error
	URL(ctx context.Context, key string) (string, error)
}

// DirectUploader is a FileStorage clients can upload to without going through the API
type DirectUploader interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
}

// UploadService validates uploads before handing them to a FileStorage
type UploadService struct {
	Storage  FileStorage
	MaxBytes int64
	Now      func() time.Time
}

// StoredFile describes a saved upload
type StoredFile struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	URL         string `json:"url"`
}

// SaveProof sniffs the content type of r, enforces the size cap and stores the file
// under room-proofs/<owner>/
func (s *UploadService) SaveProof(ctx context.Context, ownerID, fileName string, r io.Reader) (*StoredFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, utils.NewValidationError(fmt.Sprintf("file exceeds the %d byte limit", s.MaxBytes))
	}
	if len(data) == 0 {
		return nil, utils.NewValidationError("file is empty")
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedProofTypes...) {
		return nil, utils.NewValidationError("only JPEG, PNG, WEBP or PDF files are allowed")
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	key := path.Join("room-proofs", ownerID,
		fmt.Sprintf("%s-%s-%s%s", s.Now().UTC().Format("20060102150405"), uuid.NewString()[:8], sanitizeName(base), mtype.Extension()))

	if err := s.Storage.Save(ctx, key, mtype.String(), bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	url, err := s.Storage.URL(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload url: %w", err)
	}

	log.Printf("✅ Stored room proof %s (%s, %d bytes)", key, mtype.String(), len(data))
	return &StoredFile{Key: key, ContentType: mtype.String(), Size: int64(len(data)), URL: url}, nil
}

// PresignedUpload is where a client PUTs a file, and the key to send back afterwards
type PresignedUpload struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// PresignProfilePicture hands out a short-lived upload URL under profile-pics/<user>/
func (s *UploadService) PresignProfilePicture(ctx context.Context, userID, fileName, fileType string) (*PresignedUpload, error) {
	uploader, ok := s.Storage.(DirectUploader)
	if !ok {
		return nil, utils.NewValidationError("direct uploads are only available with S3 storage")
	}
	if !mimetype.EqualsAny(fileType, allowedPictureTypes...) {
		return nil, utils.NewValidationError("profile pictures must be JPEG, PNG or WEBP")
	}

	base := strings.TrimSuffix(filepath.Base(fileName), filepath.Ext(fileName))
	key := path.Join("profile-pics", userID,
		fmt.Sprintf("%s-%s%s", s.Now().UTC().Format("20060102150405"), sanitizeName(base), mimetype.Lookup(fileType).Extension()))

	url, err := uploader.PresignUpload(ctx, key, fileType)
	if err != nil {
		return nil, fmt.Errorf("failed to presign upload: %w", err)
	}
	log.Printf("🔑 Presigned profile picture upload %s", key)
	return &PresignedUpload{URL: url, Key: key}, nil
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "file"
	}
	if b.Len() > 40 {
		return b.String()[:40]
	}
	return b.String()
}

// LocalFileStorage keeps files on local disk, served by the router under PublicPrefix
type LocalFileStorage struct {
	Dir          string
	PublicPrefix string
}

func (s *LocalFileStorage) Save(_ context.Context, key, _ string, body io.Reader) error {
	dest := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, body)
	return err
}

func (s *LocalFileStorage) URL(_ context.Context, key string) (string, error) {
	return path.Join(s.PublicPrefix, key), nil
}

// S3FileStorage keeps files in a bucket and returns presigned read URLs
type S3FileStorage struct {
	Client    *s3.Client
	Presigner *s3.PresignClient
	Bucket    string
	URLExpiry time.Duration
}

// NewS3FileStorage loads the default AWS config for region
func NewS3FileStorage(ctx context.Context, region, bucket string) (*S3FileStorage, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return &S3FileStorage{
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		Bucket:    bucket,
		URLExpiry: 15 * time.Minute,
	}, nil
}

func (s *S3FileStorage) Save(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	return err
}

// URL generates a presigned URL for reading the object
func (s *S3FileStorage) URL(ctx context.Context, key string) (string, error) {
	presigned, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.URLExpiry))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}

// PresignUpload generates a presigned PUT URL for key
func (s *S3FileStorage) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	presigned, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(presignedUploadExpiry))
	if err != nil {
		return "", err
	}
	return presigned.URL, nil
}
