package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/scholarly/backcontent/internal/application/backcontent"
)

var _ backcontent.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory. It serves development
// setups without a bucket and tests. As an http.Handler it answers the
// download URLs it generates once mounted under the base URL's path.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
	baseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty store whose download URLs start with baseURL
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/objects"
	}
	return &MemoryObjectStorage{objects: make(map[string]memoryObject), baseURL: baseURL}
}

func (m *MemoryObjectStorage) Upload(ctx context.Context, storageKey, contentType string, body io.Reader, _ int64) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.objects[storageKey] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()
	return nil
}

func (m *MemoryObjectStorage) Download(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	m.mu.RLock()
	obj, ok := m.objects[storageKey]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (m *MemoryObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	expiresAt := time.Now().Add(expiresIn)
	return m.baseURL + "/" + storageKey + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339)), expiresAt, nil
}

func (m *MemoryObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	m.mu.Lock()
	delete(m.objects, storageKey)
	m.mu.Unlock()
	return nil
}

// Len reports how many objects are stored
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

// ServeHTTP serves one object by key. Links past their expiry are refused.
func (m *MemoryObjectStorage) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if raw := r.URL.Query().Get("expires"); raw != "" {
		expiresAt, err := time.Parse(time.RFC3339, raw)
		if err != nil || time.Now().After(expiresAt) {
			http.Error(w, "link expired", http.StatusForbidden)
			return
		}
	}

	key := strings.TrimPrefix(r.URL.Path, "/")
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	if obj.contentType != "" {
		w.Header().Set("Content-Type", obj.contentType)
	}
	http.ServeContent(w, r, "", time.Time{}, bytes.NewReader(obj.data))
}
