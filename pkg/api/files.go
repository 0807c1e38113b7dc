package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"vadapro/analyzer/pkg/analysis"
	"vadapro/analyzer/pkg/providers"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file.
const multipartMemory = 8 << 20

var errMissingFile = &analysis.ValidationError{Field: "file", Message: "A file is required"}

// UploadFile handles POST /ai/files. The form field "file" carries the
// dataset; "mimeType" overrides the part's content type.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, r, &analysis.ValidationError{
				Field:   "file",
				Message: fmt.Sprintf("File exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		h.writeError(w, r, errMissingFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, r, errMissingFile)
		return
	}
	defer func() { _ = file.Close() }()

	mimeType := strings.TrimSpace(r.FormValue("mimeType"))
	if mimeType == "" {
		mimeType = header.Header.Get("Content-Type")
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = analysis.DefaultFileMIMEType
	}

	ref, err := h.uploader.UploadFile(r.Context(), &providers.UploadRequest{
		Reader:      file,
		MIMEType:    mimeType,
		DisplayName: header.Filename,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "file uploaded",
		"name", ref.Name,
		"mime_type", ref.MIMEType,
		"size", header.Size)
	writeJSON(w, http.StatusOK, FileResponse{Success: true, File: ref})
}
