/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ldcontext provides an explicit JSON-LD context cache that serves as a json-gold document loader.
//
// Preloaded contexts are kept for the lifetime of the cache. Contexts obtained from the fetcher are
// held in a bounded LRU with expiry and can be invalidated individually or all at once.
package ldcontext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bluele/gcache"
	"github.com/piprate/json-gold/ld"

	"github.com/hyperledger/aries-framework-go/component/log"
)

var logger = log.New("wrapdoc/ldcontext")

const (
	defaultSize       = 100
	defaultExpiration = time.Hour
)

// ErrContextNotFound is returned when a context is neither preloaded nor fetchable.
var ErrContextNotFound = errors.New("context not found")

// Fetcher retrieves the raw JSON of a context document.
type Fetcher func(ctx context.Context, url string) ([]byte, error)

// Cache resolves JSON-LD contexts from preloaded documents, then from an LRU of fetched documents.
type Cache struct {
	preloaded  map[string]interface{}
	fetched    gcache.Cache
	fetch      Fetcher
	size       int
	expiration time.Duration
	ctx        context.Context
	err        error
}

// Opt configures a Cache.
type Opt func(c *Cache)

// WithContext preloads the context document served for url.
func WithContext(url string, document []byte) Opt {
	return func(c *Cache) {
		if c.err != nil {
			return
		}

		doc, err := ld.DocumentFromReader(bytes.NewReader(document))
		if err != nil {
			c.err = fmt.Errorf("preload context '%s': %w", url, err)

			return
		}

		c.preloaded[url] = doc
	}
}

// WithContexts preloads several context documents keyed by URL.
func WithContexts(documents map[string][]byte) Opt {
	return func(c *Cache) {
		for url, doc := range documents {
			WithContext(url, doc)(c)
		}
	}
}

// WithFetcher sets the function used for contexts that are not preloaded.
func WithFetcher(fetch Fetcher) Opt {
	return func(c *Cache) {
		c.fetch = fetch
	}
}

// WithSize bounds the number of fetched contexts kept in memory.
func WithSize(size int) Opt {
	return func(c *Cache) {
		c.size = size
	}
}

// WithExpiration sets how long a fetched context stays cached. Zero keeps entries until evicted.
func WithExpiration(d time.Duration) Opt {
	return func(c *Cache) {
		c.expiration = d
	}
}

// WithFetchContext sets the context passed to the fetcher. json-gold's loader interface carries none.
func WithFetchContext(ctx context.Context) Opt {
	return func(c *Cache) {
		c.ctx = ctx
	}
}

// New creates a Cache.
func New(opts ...Opt) (*Cache, error) {
	c := &Cache{
		preloaded:  map[string]interface{}{},
		size:       defaultSize,
		expiration: defaultExpiration,
		ctx:        context.Background(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.err != nil {
		return nil, c.err
	}

	if c.size <= 0 {
		c.size = defaultSize
	}

	builder := gcache.New(c.size).LRU()
	if c.expiration > 0 {
		builder = builder.Expiration(c.expiration)
	}

	c.fetched = builder.Build()

	return c, nil
}

// LoadDocument implements ld.DocumentLoader.
func (c *Cache) LoadDocument(url string) (*ld.RemoteDocument, error) {
	if doc, ok := c.preloaded[url]; ok {
		return &ld.RemoteDocument{DocumentURL: url, Document: doc}, nil
	}

	if cached, err := c.fetched.Get(url); err == nil {
		return &ld.RemoteDocument{DocumentURL: url, Document: cached}, nil
	}

	if c.fetch == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrContextNotFound, url)
	}

	raw, err := c.fetch(c.ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch '%s': %v", ErrContextNotFound, url, err)
	}

	doc, err := ld.DocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse context '%s': %w", url, err)
	}

	if err = c.fetched.Set(url, doc); err != nil {
		logger.Warnf("failed to cache context '%s': %v", url, err)
	}

	logger.Debugf("fetched context '%s'", url)

	return &ld.RemoteDocument{DocumentURL: url, Document: doc}, nil
}

// Preloaded reports whether url is served from the preloaded set.
func (c *Cache) Preloaded(url string) bool {
	_, ok := c.preloaded[url]

	return ok
}

// Invalidate drops a fetched context. Preloaded contexts are not affected.
func (c *Cache) Invalidate(url string) bool {
	return c.fetched.Remove(url)
}

// Purge drops every fetched context.
func (c *Cache) Purge() {
	c.fetched.Purge()
}
