package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tagexplorer/backend/pkg/ai"
	"github.com/tagexplorer/backend/pkg/common"
	"github.com/tagexplorer/backend/pkg/leaselock"
	"github.com/tagexplorer/backend/pkg/logger"
	"github.com/tagexplorer/backend/pkg/store"
)

const embedBatchSize = 64

// Locker runs fn while holding a named lease.
type Locker interface {
	WithLease(ctx context.Context, key string, opts leaselock.Options, fn func(ctx context.Context) error) error
}

type TrashStore interface {
	EmptyTrash(ctx context.Context) ([]string, error)
}

type BlobDeleter interface {
	DeleteMany(ctx context.Context, keys []string) error
}

type TagEmbeddingStore interface {
	TagsWithoutEmbedding(ctx context.Context, limit int) ([]common.Tag, error)
	SetTagEmbedding(ctx context.Context, id string, embedding []float32) error
}

// Jobs holds the dependencies of the background jobs.
type Jobs struct {
	Locks    Locker
	Trash    TrashStore
	Blobs    BlobDeleter
	Tags     TagEmbeddingStore
	Embedder store.Embedder
	Owner    string
}

// ProcessTrashMessage empties the trash and removes the blobs of the
// deleted files. A run already in progress elsewhere counts as success.
func (j *Jobs) ProcessTrashMessage(ctx context.Context, body []byte) error {
	var msg TrashMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("invalid trash message: %w", err)
	}

	err := j.Locks.WithLease(ctx, leaselock.KeyEmptyTrash, leaselock.Options{
		TTL:   2 * time.Minute,
		Owner: j.Owner,
	}, func(ctx context.Context) error {
		keys, err := j.Trash.EmptyTrash(ctx)
		if err != nil {
			return fmt.Errorf("empty trash: %w", err)
		}
		logger.Info("[Queue] Trash emptied", "files", len(keys))

		if len(keys) == 0 || j.Blobs == nil {
			return nil
		}
		// rows are gone, so blob failures only leave orphans behind
		if err := j.Blobs.DeleteMany(ctx, keys); err != nil {
			logger.Warn("[Queue] Failed to delete blobs", "files", len(keys), "err", err)
		}
		return nil
	})
	if errors.Is(err, leaselock.ErrBusy) {
		logger.Info("[Queue] Trash is already being emptied")
		return nil
	}
	return err
}

// ProcessEmbedMessage embeds every tag without an embedding in batches.
func (j *Jobs) ProcessEmbedMessage(ctx context.Context, body []byte) error {
	var msg EmbedMsg
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("invalid embed message: %w", err)
	}
	if j.Embedder == nil {
		logger.Debug("[Queue] No embedder configured, skipping tag embeddings")
		return nil
	}

	err := j.Locks.WithLease(ctx, leaselock.KeyTagEmbeddings, leaselock.Options{
		TTL:   5 * time.Minute,
		Owner: j.Owner,
	}, func(ctx context.Context) error {
		total := 0
		for {
			tags, err := j.Tags.TagsWithoutEmbedding(ctx, embedBatchSize)
			if err != nil {
				return fmt.Errorf("list tags: %w", err)
			}
			if len(tags) == 0 {
				break
			}

			inputs := make([][]byte, len(tags))
			for i, t := range tags {
				inputs[i] = ai.EmbeddingInput(t.Name)
			}
			vectors, err := store.GenerateEmbeddings(ctx, j.Embedder, inputs)
			if err != nil {
				return fmt.Errorf("embed tags: %w", err)
			}
			for i, t := range tags {
				if err := j.Tags.SetTagEmbedding(ctx, t.ID, vectors[i]); err != nil {
					if errors.Is(err, store.ErrNotFound) {
						continue
					}
					return fmt.Errorf("store embedding for %s: %w", t.ID, err)
				}
			}
			total += len(tags)
			if len(tags) < embedBatchSize {
				break
			}
		}
		logger.Info("[Queue] Tag embeddings updated", "tags", total)
		return nil
	})
	if errors.Is(err, leaselock.ErrBusy) {
		logger.Info("[Queue] Tag embeddings are already being updated")
		return nil
	}
	return err
}

// Process dispatches body to the job registered for queueName.
func (j *Jobs) Process(ctx context.Context, queueName string, body []byte) error {
	switch queueName {
	case TrashQueue:
		return j.ProcessTrashMessage(ctx, body)
	case EmbedQueue:
		return j.ProcessEmbedMessage(ctx, body)
	default:
		return fmt.Errorf("unknown queue %q", queueName)
	}
}
