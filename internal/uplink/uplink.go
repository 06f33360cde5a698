// Package uplink pushes finished encounters to an upstream object store
// and records the outcome in the sync log. A push is best effort: a
// failed attempt is recorded with its failure flag so it can be retried,
// and never blocks local persistence.
package uplink

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	rerrors "github.com/raidmeter/raidmeter/internal/errors"
)

// ObjectStore abstracts the upstream object storage. Implementations
// exist for the local filesystem and S3.
type ObjectStore interface {
	// Put writes payload under key, replacing any existing object.
	Put(ctx context.Context, key string, payload []byte) error

	// Get reads the object stored under key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
}

// SyncRecorder is the slice of the store the uplink needs: recording
// and reading per-encounter sync outcomes.
type SyncRecorder interface {
	RecordSync(ctx context.Context, encounterID int64, upstreamID string, failed bool) error
	SyncStatus(ctx context.Context, encounterID int64) (string, bool, error)
}

// Service pushes encounter payloads upstream.
type Service struct {
	objects ObjectStore
	syncs   SyncRecorder
}

// NewService creates an uplink service over the given object store and
// sync recorder.
func NewService(objects ObjectStore, syncs SyncRecorder) *Service {
	return &Service{objects: objects, syncs: syncs}
}

// Push uploads one encounter payload and records the outcome. On success
// the assigned upstream id is returned; on failure the sync log keeps a
// failed entry and the returned error is retryable.
func (s *Service) Push(ctx context.Context, encounterID int64, payload []byte) (string, error) {
	upstreamID := uuid.NewString()
	key := objectKey(upstreamID)

	if err := s.objects.Put(ctx, key, payload); err != nil {
		if recErr := s.syncs.RecordSync(ctx, encounterID, "", true); recErr != nil {
			log.Printf("uplink: failed to record sync failure for encounter %d: %v", encounterID, recErr)
		}
		return "", rerrors.NewUplinkError(fmt.Sprintf("push encounter %d", encounterID), err)
	}

	if err := s.syncs.RecordSync(ctx, encounterID, upstreamID, false); err != nil {
		return "", err
	}
	return upstreamID, nil
}

// Status returns the recorded upstream id and failure flag for an
// encounter.
func (s *Service) Status(ctx context.Context, encounterID int64) (string, bool, error) {
	return s.syncs.SyncStatus(ctx, encounterID)
}

func objectKey(upstreamID string) string {
	return "encounters/" + upstreamID
}
