//-------------------------------------------------------------------------
//
// pgEdge Retail Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package storage

import (
	"bytes"
	"context"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Object is an object held by MemoryClient.
type Object struct {
	Body        []byte
	ContentType string
	Metadata    map[string]string
}

// MemoryClient is an in-memory ObjectAPI for a single bucket.
type MemoryClient struct {
	mu      sync.Mutex
	bucket  string
	objects map[string]Object
	puts    int
}

// NewMemoryClient creates an empty in-memory bucket.
func NewMemoryClient(bucket string) *MemoryClient {
	return &MemoryClient{bucket: bucket, objects: make(map[string]Object)}
}

// HeadBucket implements ObjectAPI.
func (m *MemoryClient) HeadBucket(_ context.Context, params *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if aws.ToString(params.Bucket) != m.bucket {
		return nil, &types.NotFound{Message: aws.String("bucket not found")}
	}
	return &s3.HeadBucketOutput{}, nil
}

// HeadObject implements ObjectAPI.
func (m *MemoryClient) HeadObject(_ context.Context, params *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(obj.Body))),
		ContentType:   aws.String(obj.ContentType),
		Metadata:      obj.Metadata,
	}, nil
}

// PutObject implements ObjectAPI.
func (m *MemoryClient) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	var body []byte
	if params.Body != nil {
		data, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		body = data
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[aws.ToString(params.Key)] = Object{
		Body:        body,
		ContentType: aws.ToString(params.ContentType),
		Metadata:    maps.Clone(params.Metadata),
	}
	m.puts++
	return &s3.PutObjectOutput{}, nil
}

// GetObject implements ObjectAPI.
func (m *MemoryClient) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(obj.Body))}, nil
}

// Object returns the object stored at key.
func (m *MemoryClient) Object(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[key]
	return obj, ok
}

// Keys returns every stored key in sorted order.
func (m *MemoryClient) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Sorted(maps.Keys(m.objects))
}

// Puts returns the number of PutObject calls served.
func (m *MemoryClient) Puts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.puts
}
