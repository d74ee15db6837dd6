/* Copyright (c) 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file in the current directory for license terms
 */
package s3store

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
)

const cachePrefix = "s3cache"

// HTTPCache implements httpcache.Cache on top of a Bucket. The httpcache
// interface has no context or error returns, so the context is fixed at
// construction and failures are logged and treated as cache misses.
type HTTPCache struct {
	bucket    *Bucket
	ctx       context.Context
	logErrors bool
}

func NewHTTPCache(ctx context.Context, bucket *Bucket,
	logErrors bool) *HTTPCache {

	return &HTTPCache{
		bucket:    bucket,
		ctx:       ctx,
		logErrors: logErrors,
	}
}

func cacheKeyToObjectKey(key string) string {
	h := md5.New()
	io.WriteString(h, key)

	return fmt.Sprintf("%v/%v", cachePrefix, hex.EncodeToString(h.Sum(nil)))
}

func (c *HTTPCache) Get(key string) ([]byte, bool) {
	data, err := c.bucket.Get(c.ctx, cacheKeyToObjectKey(key))
	if err != nil {
		// no such key just indicates a cache miss
		if c.logErrors && !errors.Is(err, ErrNotFound) {
			log.Printf("s3store.cacheget: %v", err)
		}
		return []byte{}, false
	}

	return data, true
}

func (c *HTTPCache) Set(key string, data []byte) {
	err := c.bucket.Put(c.ctx, cacheKeyToObjectKey(key), data)
	if err != nil && c.logErrors {
		log.Printf("s3store.cacheset: %v", err)
	}
}

func (c *HTTPCache) Delete(key string) {
	err := c.bucket.Delete(c.ctx, cacheKeyToObjectKey(key))
	if err != nil && c.logErrors {
		log.Printf("s3store.cachedelete: %v", err)
	}
}
