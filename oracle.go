package main

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"
)

// existenceChecker decides whether a composed key is already in the bucket.
// "Not found" is (false, nil); any other failure is an *ExistenceCheckError.
type existenceChecker interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// newExistenceChecker picks the strategy for the run. The default lists the
// whole prefix up front; low-memory mode probes each key instead.
func newExistenceChecker(ctx context.Context, store ObjectStore, cfg runConfig) (existenceChecker, error) {
	if cfg.LowMemory {
		return &headProbe{store: store, bucket: cfg.Bucket}, nil
	}
	return listKeys(ctx, store, cfg.Bucket, cfg.S3Folder)
}

// listedKeys answers from a snapshot of every key under the prefix.
// Memory grows with the number of remote objects, lookups cost no requests.
type listedKeys struct {
	keys mapset.Set[string]
}

// listKeys follows continuation tokens until the listing is exhausted.
func listKeys(ctx context.Context, store ObjectStore, bucket, prefix string) (*listedKeys, error) {
	keys := mapset.NewThreadUnsafeSet[string]()

	token := ""
	for {
		page, err := store.ListObjects(ctx, bucket, prefix, token)
		if err != nil {
			return nil, &ExistenceCheckError{Op: "listObjects", Bucket: bucket, Err: err}
		}
		keys.Append(page.Keys...)

		if !page.IsTruncated || page.NextToken == "" {
			break
		}
		token = page.NextToken
	}

	return &listedKeys{keys: keys}, nil
}

func (l *listedKeys) Exists(_ context.Context, key string) (bool, error) {
	return l.keys.Contains(key), nil
}

// Len returns the number of remote keys held in memory.
func (l *listedKeys) Len() int {
	return l.keys.Cardinality()
}

// headProbe issues one HEAD request per key and keeps nothing in memory.
type headProbe struct {
	store  ObjectStore
	bucket string
}

func (h *headProbe) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := h.store.HeadObject(ctx, h.bucket, key)
	if err != nil {
		return false, &ExistenceCheckError{Op: "headObject", Bucket: h.bucket, Key: key, Err: err}
	}
	return ok, nil
}
