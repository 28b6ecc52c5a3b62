// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/docchat-tui/internal/backend"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/util"
)

// DefaultTTL is how long document info stays cached.
const DefaultTTL = 5 * time.Minute

// sniffLen is how many leading bytes the content probe reads.
const sniffLen = 512

var pdfMagic = []byte("%PDF-")

// ErrNoDocument is returned when no document is active.
var ErrNoDocument = errors.New("no document selected")

// =============================================================================
// TYPES
// =============================================================================

// Source is the subset of the backend client the preview needs.
type Source interface {
	DocumentInfo(ctx context.Context, name string) (*model.DocumentInfo, error)
	ContentURL(path string) string
	FetchContent(ctx context.Context, path string) (*backend.Content, error)
}

// Probe describes what the content endpoint served.
type Probe struct {
	ContentType   string
	ContentLength int64
	IsPDF         bool
}

// Pane is everything the preview pane renders for one document.
type Pane struct {
	Document model.Document
	URL      string

	Info    *model.DocumentInfo
	InfoErr error

	Probe    *Probe
	ProbeErr error
}

// Available reports whether the content endpoint served the document.
func (p Pane) Available() bool {
	return p.Probe != nil
}

// =============================================================================
// SERVICE
// =============================================================================

// Service loads preview data and caches document info by name.
type Service struct {
	src    Source
	cache  *cache.Cache
	ttl    time.Duration
	logger *zap.Logger
	open   func(string) error
}

// New creates a Service. A non-positive ttl disables caching.
func New(src Source, ttl time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		src:    src,
		cache:  cache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger.Named("preview"),
		open:   util.OpenExternal,
	}
}

// URL returns the content URL for doc.
func (s *Service) URL(doc model.Document) string {
	if doc.IsZero() {
		return ""
	}
	return s.src.ContentURL(doc.Path)
}

// Info returns backend metadata for doc. Only successful lookups are cached.
func (s *Service) Info(ctx context.Context, doc model.Document) (*model.DocumentInfo, error) {
	if doc.IsZero() {
		return nil, ErrNoDocument
	}
	name := doc.DisplayName()
	if x, found := s.cache.Get(name); found {
		return x.(*model.DocumentInfo), nil
	}

	info, err := s.src.DocumentInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	if s.ttl > 0 {
		s.cache.Set(name, info, cache.DefaultExpiration)
	}
	return info, nil
}

// ProbeContent fetches the first bytes of the document to confirm the
// content endpoint can serve it.
func (s *Service) ProbeContent(ctx context.Context, doc model.Document) (*Probe, error) {
	if doc.IsZero() {
		return nil, ErrNoDocument
	}
	content, err := s.src.FetchContent(ctx, doc.Path)
	if err != nil {
		return nil, err
	}
	defer content.Body.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(content.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]

	contentType := content.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(head)
	}
	return &Probe{
		ContentType:   contentType,
		ContentLength: content.ContentLength,
		IsPDF:         bytes.HasPrefix(head, pdfMagic),
	}, nil
}

// Load gathers info and probe concurrently. Failures are recorded on the
// pane rather than returned, so a partial pane can still be shown.
func (s *Service) Load(ctx context.Context, doc model.Document) Pane {
	pane := Pane{Document: doc, URL: s.URL(doc)}
	if doc.IsZero() {
		pane.InfoErr = ErrNoDocument
		pane.ProbeErr = ErrNoDocument
		return pane
	}

	var g errgroup.Group
	g.Go(func() error {
		pane.Info, pane.InfoErr = s.Info(ctx, doc)
		return nil
	})
	g.Go(func() error {
		pane.Probe, pane.ProbeErr = s.ProbeContent(ctx, doc)
		return nil
	})
	_ = g.Wait()

	if pane.InfoErr != nil {
		s.logger.Debug("document info unavailable", zap.String("path", doc.Path), zap.Error(pane.InfoErr))
	}
	if pane.ProbeErr != nil {
		s.logger.Debug("content probe failed", zap.String("path", doc.Path), zap.Error(pane.ProbeErr))
	}
	return pane
}

// Open hands the content URL to the system viewer.
func (s *Service) Open(doc model.Document) error {
	if doc.IsZero() {
		return ErrNoDocument
	}
	url := s.URL(doc)
	s.logger.Info("opening document externally", zap.String("url", url))
	return s.open(url)
}

// Invalidate drops the cached info for a document name.
func (s *Service) Invalidate(name string) {
	s.cache.Delete(name)
}

// Purge drops every cached entry.
func (s *Service) Purge() {
	s.cache.Flush()
}
