// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package attachment holds the single document staged for the next send.
//
// A document is uploaded to the backend, which extracts its text; the
// result is staged here until the next message consumes it or the user
// moves to another conversation. Nothing is persisted.
package attachment

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jeranaias/chatdesk/internal/model"
	"github.com/jeranaias/chatdesk/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// MaxUploadSize is the largest document the backend accepts.
const MaxUploadSize int64 = 10 * 1024 * 1024

// AllowedExtensions lists the document types the backend can extract.
var AllowedExtensions = []string{".pdf", ".txt"}

// Sentinel errors for local pre-checks.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file too large")
)

// =============================================================================
// STAGED ATTACHMENT
// =============================================================================

// StagedAttachment is an uploaded document waiting to be sent.
type StagedAttachment struct {
	Filename string
	Type     string
	Content  string
	Size     int64
}

// FromUpload builds a StagedAttachment from the upload response.
func FromUpload(r *model.UploadResult) StagedAttachment {
	return StagedAttachment{
		Filename: r.Filename,
		Type:     r.Type,
		Content:  r.Content,
		Size:     r.Size,
	}
}

// Label renders the chip shown next to the input.
func (a StagedAttachment) Label() string {
	typ := strings.TrimPrefix(a.Type, ".")
	if typ == "" {
		typ = strings.TrimPrefix(strings.ToLower(filepath.Ext(a.Filename)), ".")
	}
	return fmt.Sprintf("📎 %s (%s, %s) - Ready to send", a.Filename, typ, util.FormatBytes(a.Size))
}

// =============================================================================
// STAGING AREA
// =============================================================================

// Staging holds at most one attachment.
//
// Staging is safe for concurrent use.
type Staging struct {
	mu      sync.Mutex
	current *StagedAttachment
}

// NewStaging creates an empty staging area.
func NewStaging() *Staging {
	return &Staging{}
}

// Stage replaces whatever was staged.
func (s *Staging) Stage(a StagedAttachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staged := a
	s.current = &staged
}

// Current returns a copy of the staged attachment, if any.
func (s *Staging) Current() (*StagedAttachment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	staged := *s.current
	return &staged, true
}

// Clear drops the staged attachment.
func (s *Staging) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// =============================================================================
// PRE-CHECKS
// =============================================================================

// IsAllowed reports whether filename has an accepted extension.
func IsAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// CheckUpload validates a file before it is sent to the backend, using
// the same limits the backend enforces.
func CheckUpload(filename string, size int64) error {
	if !IsAllowed(filename) {
		return fmt.Errorf("%w: only %s files are allowed", ErrUnsupportedType, strings.Join(AllowedExtensions, ", "))
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%w: %s exceeds the %s limit", ErrTooLarge, util.FormatBytes(size), util.FormatBytes(MaxUploadSize))
	}
	return nil
}
