// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/jeranaias/chatdesk/internal/model"
)

const uploadPath = "/chat/upload"

// quoteEscaper escapes a filename for a Content-Disposition quoted-string
// the way mime/multipart does.
var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// contentTypeFor returns the part Content-Type for a filename.
func contentTypeFor(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}

// UploadFile sends a document to the backend for text extraction.
// The backend enforces type and size limits and answers 413/415/400
// with a detail message.
func (c *Client) UploadFile(ctx context.Context, r io.Reader, filename string) (*model.UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filepath.Base(filename))))
	header.Set("Content-Type", contentTypeFor(filename))

	part, err := mw.CreatePart(header)
	if err == nil {
		_, err = io.Copy(part, r)
	}
	if err == nil {
		err = mw.Close()
	}
	if err != nil {
		return nil, &GatewayError{Kind: KindRequest, Method: http.MethodPost, Path: uploadPath, Cause: err}
	}

	var result model.UploadResult
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        uploadPath,
		body:        &buf,
		contentType: mw.FormDataContentType(),
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.Filename == "" {
		result.Filename = filepath.Base(filename)
	}
	return &result, nil
}
