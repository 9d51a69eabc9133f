package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MockObjectStore is an in-memory ObjectStore that records every call and can be
// configured to fail specific operations.
type MockObjectStore struct {
	mu sync.Mutex

	// Objects holds stored objects by key. Seed it to simulate a populated bucket.
	Objects map[string]*RecordedUpload

	// Uploads records all upload attempts in order, failed ones included.
	Uploads []*RecordedUpload

	// ErrorFunc allows dynamic error injection based on the upload input.
	// If nil, uploads succeed.
	ErrorFunc func(input *UploadInput) error

	// HeadErr and ListErr, when set, are returned by every HeadObject/ListObjects call.
	HeadErr error
	ListErr error

	// PageSize limits the number of keys per ListObjects page. Zero means 1000.
	PageSize int

	ListCalls int
	HeadCalls int
}

// RecordedUpload stores the details of an upload attempt for verification.
type RecordedUpload struct {
	Input *UploadInput
	Error error
}

// NewMockObjectStore creates a mock store pre-populated with the given keys.
func NewMockObjectStore(keys ...string) *MockObjectStore {
	m := &MockObjectStore{Objects: make(map[string]*RecordedUpload)}
	for _, k := range keys {
		m.Objects[k] = &RecordedUpload{Input: &UploadInput{Key: k}}
	}
	return m
}

// ListObjects implements ObjectStore.ListObjects. Tokens are stringified offsets
// into the sorted key list.
func (m *MockObjectStore) ListObjects(_ context.Context, _ string, prefix, token string) (*ListPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	keys := make([]string, 0, len(m.Objects))
	for k := range m.Objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	start := 0
	if token != "" {
		var err error
		if start, err = strconv.Atoi(token); err != nil {
			return nil, fmt.Errorf("mock: bad continuation token %q", token)
		}
	}
	size := m.PageSize
	if size <= 0 {
		size = 1000
	}
	end := min(start+size, len(keys))

	page := &ListPage{Keys: keys[start:end]}
	if end < len(keys) {
		page.IsTruncated = true
		page.NextToken = strconv.Itoa(end)
	}
	return page, nil
}

// HeadObject implements ObjectStore.HeadObject.
func (m *MockObjectStore) HeadObject(_ context.Context, _, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.HeadCalls++
	if m.HeadErr != nil {
		return false, m.HeadErr
	}
	_, ok := m.Objects[key]
	return ok, nil
}

// PutObject implements ObjectStore.PutObject by recording the upload and
// optionally returning an error from ErrorFunc.
func (m *MockObjectStore) PutObject(_ context.Context, input *UploadInput) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := &RecordedUpload{Input: input}
	if m.ErrorFunc != nil {
		recorded.Error = m.ErrorFunc(input)
	}
	m.Uploads = append(m.Uploads, recorded)

	if recorded.Error != nil {
		return recorded.Error
	}
	m.Objects[input.Key] = recorded
	return nil
}

// Reset clears recorded uploads and call counters, keeping stored objects.
func (m *MockObjectStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Uploads = nil
	m.ListCalls = 0
	m.HeadCalls = 0
}

// GetUploadByKey returns the first upload matching the given key, or nil if not found.
func (m *MockObjectStore) GetUploadByKey(key string) *RecordedUpload {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.Uploads {
		if u.Input.Key == key {
			return u
		}
	}
	return nil
}

// --- Error injection helpers ---

// ErrorOnKeySuffix returns an ErrorFunc that fails uploads whose key ends with suffix.
func ErrorOnKeySuffix(suffix string, err error) func(*UploadInput) error {
	return func(input *UploadInput) error {
		if strings.HasSuffix(input.Key, suffix) {
			return err
		}
		return nil
	}
}

// ErrorAlways returns an ErrorFunc that fails all uploads.
func ErrorAlways(err error) func(*UploadInput) error {
	return func(*UploadInput) error {
		return err
	}
}

// ErrorNTimes returns an ErrorFunc that fails the first N uploads, then succeeds.
func ErrorNTimes(n int, err error) func(*UploadInput) error {
	count := 0
	return func(*UploadInput) error {
		count++
		if count <= n {
			return err
		}
		return nil
	}
}

// --- Common test errors ---

// NewAccessDeniedError creates a simulated access denied error.
func NewAccessDeniedError() error {
	return errors.New("AccessDenied: Access Denied")
}

// NewBucketNotFoundError creates a simulated bucket not found error.
func NewBucketNotFoundError() error {
	return errors.New("NoSuchBucket: The specified bucket does not exist")
}
