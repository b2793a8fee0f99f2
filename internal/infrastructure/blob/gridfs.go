package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bidhaus/auction-api/internal/core/domain"
)

const bucketName = "listing_images"

// GridFSStore stores listing images in a GridFS bucket. The reference
// returned by Put is the hex form of the GridFS file id.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

func NewGridFSStore(db *mongo.Database) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("gridfs bucket: %w", err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}
	fileID, err := s.bucket.UploadFromStream(name, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return fileID.Hex(), nil
}

func (s *GridFSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	fileID, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return nil, domain.ErrImageNotFound
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetReadDeadline(deadline)
	}

	var buf bytes.Buffer
	if _, err := s.bucket.DownloadToStream(fileID, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("download image: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *GridFSStore) Delete(ctx context.Context, ref string) error {
	fileID, err := primitive.ObjectIDFromHex(ref)
	if err != nil {
		return domain.ErrImageNotFound
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(deadline)
	}

	if err := s.bucket.Delete(fileID); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return domain.ErrImageNotFound
		}
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}
