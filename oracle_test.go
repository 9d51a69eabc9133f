package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListKeys_FollowsContinuationTokens(t *testing.T) {
	var keys []string
	for i := range 5 {
		keys = append(keys, fmt.Sprintf("assets/file-%d.js", i))
	}
	store := NewMockObjectStore(append(keys, "other/file.js")...)
	store.PageSize = 2

	listed, err := listKeys(context.Background(), store, "bucket", "assets")
	require.NoError(t, err)

	assert.Equal(t, 3, store.ListCalls)
	assert.Equal(t, 5, listed.Len())
	for _, k := range keys {
		ok, err := listed.Exists(context.Background(), k)
		require.NoError(t, err)
		assert.True(t, ok, k)
	}

	ok, err := listed.Exists(context.Background(), "other/file.js")
	require.NoError(t, err)
	assert.False(t, ok, "keys outside the prefix are not listed")
	assert.Zero(t, store.HeadCalls)
}

func TestListKeys_EmptyBucket(t *testing.T) {
	store := NewMockObjectStore()

	listed, err := listKeys(context.Background(), store, "bucket", "assets")
	require.NoError(t, err)
	assert.Equal(t, 1, store.ListCalls)
	assert.Zero(t, listed.Len())
}

func TestListKeys_Error(t *testing.T) {
	store := NewMockObjectStore()
	store.ListErr = NewBucketNotFoundError()

	_, err := listKeys(context.Background(), store, "bucket", "assets")

	var existsErr *ExistenceCheckError
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "listObjects", existsErr.Op)
	assert.Equal(t, "bucket", existsErr.Bucket)
	assert.ErrorIs(t, err, store.ListErr)
}

func TestHeadProbe(t *testing.T) {
	store := NewMockObjectStore("assets/a.js")
	probe := &headProbe{store: store, bucket: "bucket"}

	ok, err := probe.Exists(context.Background(), "assets/a.js")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = probe.Exists(context.Background(), "assets/b.js")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, store.HeadCalls)
	assert.Zero(t, store.ListCalls)
}

func TestHeadProbe_Error(t *testing.T) {
	store := NewMockObjectStore()
	store.HeadErr = NewAccessDeniedError()
	probe := &headProbe{store: store, bucket: "bucket"}

	_, err := probe.Exists(context.Background(), "assets/a.js")

	var existsErr *ExistenceCheckError
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "assets/a.js", existsErr.Key)
	assert.True(t, errors.Is(err, store.HeadErr))
	assert.Contains(t, err.Error(), "s3.headObject bucket/assets/a.js")
}

func TestNewExistenceChecker(t *testing.T) {
	store := NewMockObjectStore("assets/a.js")

	checker, err := newExistenceChecker(context.Background(), store, runConfig{Bucket: "bucket", S3Folder: "assets"})
	require.NoError(t, err)
	assert.IsType(t, &listedKeys{}, checker)
	assert.Equal(t, 1, store.ListCalls)

	store.Reset()
	checker, err = newExistenceChecker(context.Background(), store, runConfig{Bucket: "bucket", S3Folder: "assets", LowMemory: true})
	require.NoError(t, err)
	assert.IsType(t, &headProbe{}, checker)
	assert.Zero(t, store.ListCalls, "low memory mode must not list")
}
