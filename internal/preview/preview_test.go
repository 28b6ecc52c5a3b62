// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package preview

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat-tui/internal/backend"
	"github.com/jeranaias/docchat-tui/internal/model"
)

type fakeSource struct {
	mu        sync.Mutex
	infoCalls int
	infoErr   error
	body      string
	ctype     string
	fetchErr  error
}

func (f *fakeSource) DocumentInfo(_ context.Context, name string) (*model.DocumentInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoCalls++
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	pages := 12
	return &model.DocumentInfo{Name: name, Size: 1024, PageCount: &pages}, nil
}

func (f *fakeSource) ContentURL(path string) string {
	return "http://backend/api/pdf-content?path=" + path
}

func (f *fakeSource) FetchContent(_ context.Context, _ string) (*backend.Content, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return &backend.Content{
		Body:          io.NopCloser(strings.NewReader(f.body)),
		ContentType:   f.ctype,
		ContentLength: int64(len(f.body)),
	}, nil
}

func (f *fakeSource) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoCalls
}

var doc = model.Document{Name: "report.pdf", Path: "/data/report.pdf"}

func TestInfo_Cached(t *testing.T) {
	src := &fakeSource{}
	svc := New(src, time.Minute, nil)

	first, err := svc.Info(context.Background(), doc)
	require.NoError(t, err)
	second, err := svc.Info(context.Background(), doc)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.calls())

	svc.Invalidate("report.pdf")
	_, err = svc.Info(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls())
}

func TestInfo_CachingDisabled(t *testing.T) {
	src := &fakeSource{}
	svc := New(src, 0, nil)

	for i := 0; i < 3; i++ {
		_, err := svc.Info(context.Background(), doc)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, src.calls())
}

func TestInfo_ErrorsNotCached(t *testing.T) {
	src := &fakeSource{infoErr: errors.New("boom")}
	svc := New(src, time.Minute, nil)

	_, err := svc.Info(context.Background(), doc)
	require.Error(t, err)

	src.infoErr = nil
	info, err := svc.Info(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", info.Name)
}

func TestProbeContent(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		ctype     string
		wantPDF   bool
		wantCType string
	}{
		{"pdf with header", "%PDF-1.7\n...", "application/pdf", true, "application/pdf"},
		{"sniffed type", "%PDF-1.4", "", true, "application/pdf"},
		{"html error page", "<html><body>nope</body></html>", "", false, "text/html; charset=utf-8"},
		{"empty", "", "application/pdf", false, "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&fakeSource{body: tt.body, ctype: tt.ctype}, time.Minute, nil)
			probe, err := svc.ProbeContent(context.Background(), doc)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPDF, probe.IsPDF)
			assert.Equal(t, tt.wantCType, probe.ContentType)
		})
	}
}

func TestLoad_PartialFailure(t *testing.T) {
	src := &fakeSource{body: "%PDF-1.7", fetchErr: errors.New("unreachable")}
	svc := New(src, time.Minute, nil)

	pane := svc.Load(context.Background(), doc)
	assert.Equal(t, "http://backend/api/pdf-content?path=/data/report.pdf", pane.URL)
	require.NoError(t, pane.InfoErr)
	assert.Equal(t, 12, *pane.Info.PageCount)
	assert.Error(t, pane.ProbeErr)
	assert.False(t, pane.Available())
}

func TestNoDocument(t *testing.T) {
	svc := New(&fakeSource{}, time.Minute, nil)

	pane := svc.Load(context.Background(), model.Document{})
	assert.ErrorIs(t, pane.InfoErr, ErrNoDocument)
	assert.Empty(t, pane.URL)
	assert.ErrorIs(t, svc.Open(model.Document{}), ErrNoDocument)
}

func TestOpen(t *testing.T) {
	svc := New(&fakeSource{}, time.Minute, nil)
	var opened string
	svc.open = func(target string) error {
		opened = target
		return nil
	}

	require.NoError(t, svc.Open(doc))
	assert.Equal(t, "http://backend/api/pdf-content?path=/data/report.pdf", opened)
}
