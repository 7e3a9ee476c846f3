package blobstore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sort"
	"sync"
)

// Object is a stored body with its declared content type.
type Object struct {
	Body        []byte
	ContentType string
}

// Memory is an in-process Store. It backs dry runs and tests.
type Memory struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]Object
	fail    map[string]error
	gets    []string
	puts    []string
}

// NewMemory returns an empty store labelled with bucket.
func NewMemory(bucket string) *Memory {
	return &Memory{
		bucket:  bucket,
		objects: map[string]Object{},
		fail:    map[string]error{},
	}
}

// Seed stores body under key without recording a put.
func (m *Memory) Seed(key string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{Body: append([]byte(nil), body...)}
}

// FailOn makes every later Get or Put of key return a TransportError wrapping err.
func (m *Memory) FailOn(key string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[key] = err
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, key)
	if err, ok := m.fail[key]; ok {
		return nil, &TransportError{Op: "get", Bucket: m.bucket, Key: key, Err: err}
	}
	obj, ok := m.objects[key]
	if !ok {
		return nil, &NotFoundError{Bucket: m.bucket, Key: key}
	}
	return append([]byte(nil), obj.Body...), nil
}

func (m *Memory) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts = append(m.puts, key)
	if err, ok := m.fail[key]; ok {
		return "", &TransportError{Op: "put", Bucket: m.bucket, Key: key, Err: err}
	}
	m.objects[key] = Object{Body: append([]byte(nil), body...), ContentType: contentType}
	sum := md5.Sum(body)
	return hex.EncodeToString(sum[:]), nil
}

// Object returns the stored object for key.
func (m *Memory) Object(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys lists stored keys in lexical order.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Gets returns every key passed to Get, in call order.
func (m *Memory) Gets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.gets...)
}

// Puts returns every key passed to Put, in call order, including failed ones.
func (m *Memory) Puts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.puts...)
}
