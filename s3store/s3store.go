/* Copyright (c) 2013 The s3cache AUTHORS. All rights reserved.
 * Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 *
 * Package s3store keeps small objects (meeting history, cached roster
 * pages) in an Amazon S3 bucket. Bucket provides context aware
 * Get/Put/Delete and HTTPCache adapts a Bucket to httpcache.Cache. It
 * started life as github.com/sourcegraph/s3cache.
 */
package s3store

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// ErrNotFound is returned by Get when the object does not exist
var ErrNotFound = errors.New("s3store: no such key")

// Bucket stores and retrieves objects in a single S3 bucket.
type Bucket struct {
	// Config is the Amazon S3 configuration.
	Config aws.Config

	// Client is the s3 client used when interacting with S3. By default it
	// is initialized in Init() with the default Config, but callers can
	// override it with their own s3 client if desired.
	Client *s3.Client

	// name is the name of the S3 bucket, e.g. "mybucket".
	name string

	// gzip indicates whether objects are gzipped in Put and gunzipped in
	// Get. If true, object keys have the suffix ".gz" appended.
	gzip bool
}

// New returns a Bucket backed by the named S3 bucket. Callers should take
// care to invoke Init() on the returned Bucket before use.
func New(nameIn string, gzipIn bool) *Bucket {
	return &Bucket{
		name: nameIn,
		gzip: gzipIn,
	}
}

// Name returns the bucket name
func (b *Bucket) Name() string { return b.name }

// Init loads the default AWS configuration and checks the bucket can be
// read. The default configuration sources are:
// * Environment Variables (e.g. AWS_ACCESS_KEY_ID and AWS_SECRET_KEY)
// * Shared Configuration and Shared Credentials files.
func (b *Bucket) Init(ctx context.Context) error {
	var err error
	b.Config, err = config.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("s3store.init: failed to load AWS config: %w", err)
	}
	b.Client = s3.NewFromConfig(b.Config)

	// Permission check: verify bucket exists and is accessible
	if _, err = b.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.name),
	}); err != nil {
		return fmt.Errorf("s3store.init: head bucket failed for %s: %w", b.name, err)
	}

	// Permission check: verify ability to list objects (read/list permissions)
	if _, err = b.Client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.name),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		return fmt.Errorf("s3store.init: list objects failed for %s: %w", b.name, err)
	}

	return nil
}

func (b *Bucket) objectKey(key string) string {
	if b.gzip {
		return key + ".gz"
	}

	return key
}

// Get returns the contents of key, or ErrNotFound if it does not exist.
func (b *Bucket) Get(ctx context.Context, key string) ([]byte, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(key)),
	}

	resp, err := b.Client.GetObject(ctx, input)
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3store.get: failed to get object %v/%v: %w",
			*input.Bucket, *input.Key, err)
	}
	defer resp.Body.Close()

	rdr := resp.Body
	if b.gzip {
		rdr, err = gzip.NewReader(rdr)
		if err != nil {
			return nil, fmt.Errorf("s3store.get: failed to open compressed object %v/%v: %w",
				*input.Bucket, *input.Key, err)
		}
		defer rdr.Close()
	}
	data, err := io.ReadAll(rdr)
	if err != nil {
		return nil, fmt.Errorf("s3store.get: failed to read object %v/%v: %w",
			*input.Bucket, *input.Key, err)
	}

	return data, nil
}

// Put stores data under key, replacing any existing object.
func (b *Bucket) Put(ctx context.Context, key string, data []byte) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(key)),
		Body:   bytes.NewReader(data),
	}

	if b.gzip {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(data); err != nil {
			return fmt.Errorf("s3store.put: failed to gzip data for %v/%v: %w",
				*input.Bucket, *input.Key, err)
		}
		if err := gw.Close(); err != nil {
			return fmt.Errorf("s3store.put: failed to close gzip writer for %v/%v: %w",
				*input.Bucket, *input.Key, err)
		}
		input.Body = &buf
		input.ContentEncoding = aws.String("gzip")
	}

	if _, err := b.Client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("s3store.put: put failed for %v/%v: %w",
			*input.Bucket, *input.Key, err)
	}

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *Bucket) Delete(ctx context.Context, key string) error {
	_, err := b.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.name),
		Key:    aws.String(b.objectKey(key)),
	})
	if err != nil {
		return fmt.Errorf("s3store.delete: delete failed for %v/%v: %w",
			b.name, key, err)
	}

	return nil
}
