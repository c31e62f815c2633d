package store

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/tagexplorer/backend/pkg/common"
)

// maxParallelEmbeds caps concurrent single-input embedding calls.
const maxParallelEmbeds = 4

// ValidateTagNames normalizes names, drops blanks and duplicates, and fails
// with ErrInvalidTagName when one of the remaining names cannot be stored.
func ValidateTagNames(names []string) ([]string, error) {
	out := common.NormalizeTagNames(names)
	for _, n := range out {
		if _, err := ValidateTagName(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UniqueKeys returns the non-empty storage keys of keys, sorted, each once.
func UniqueKeys(keys []string) []string {
	out := slices.DeleteFunc(slices.Clone(keys), func(k string) bool { return k == "" })
	slices.Sort(out)
	return slices.Compact(out)
}

// Embedder produces one embedding vector per input.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, input []byte) ([]float32, error)
}

type embeddingBatcher interface {
	GenerateEmbeddings(ctx context.Context, inputs [][]byte) ([][]float32, error)
}

// GenerateEmbeddings embeds all inputs in order. Clients with a batch call get
// one request; others are called per input with bounded parallelism.
func GenerateEmbeddings(ctx context.Context, client Embedder, inputs [][]byte) ([][]float32, error) {
	if client == nil {
		return nil, errors.New("no embedding client")
	}
	if len(inputs) == 0 {
		return nil, nil
	}
	if b, ok := client.(embeddingBatcher); ok {
		return b.GenerateEmbeddings(ctx, inputs)
	}

	out := make([][]float32, len(inputs))
	eg, ectx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelEmbeds)
	for i, in := range inputs {
		eg.Go(func() error {
			emb, err := client.GenerateEmbedding(ectx, in)
			if err != nil {
				return err
			}
			out[i] = emb
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
