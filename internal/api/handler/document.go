package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nvoss/agent-chat/internal/api/middleware"
	"github.com/nvoss/agent-chat/internal/api/response"
	"github.com/nvoss/agent-chat/internal/rag"
)

// allowedDocExts mirrors what the ingestion backend can process
var allowedDocExts = map[string]bool{".pdf": true, ".docx": true, ".txt": true}

// DocumentHandler handles knowledge-base document endpoints
type DocumentHandler struct {
	ragClient *rag.Client
	uploadDir string
	maxBytes  int64
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(ragClient *rag.Client, uploadDir string, maxBytes int64) *DocumentHandler {
	// Ensure upload directory exists
	os.MkdirAll(uploadDir, 0755)
	return &DocumentHandler{ragClient: ragClient, uploadDir: uploadDir, maxBytes: maxBytes}
}

// Upload saves a document locally and forwards it to the ingestion backend
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		response.Unauthorized(w, "authentication required")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		response.BadRequest(w, "file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file uploaded")
		return
	}
	defer file.Close()

	// Validate file extension
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedDocExts[ext] {
		response.BadRequest(w, "invalid file type. Allowed: .pdf, .docx, .txt")
		return
	}

	// Generate unique filename to avoid collisions
	uniqueName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(h.uploadDir, uniqueName)

	dst, err := os.Create(destPath)
	if err != nil {
		response.InternalError(w, "failed to save file")
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(destPath) // cleanup on error
		response.InternalError(w, "failed to save file")
		return
	}

	// The ingestion backend reads the file from disk, so it needs the
	// absolute path.
	absPath, err := filepath.Abs(destPath)
	if err != nil {
		absPath = destPath
	}

	result, err := h.ragClient.Ingest(r.Context(), absPath, identity.UserID.Hex(), map[string]any{
		"original_name": header.Filename,
	})
	if err != nil {
		response.InternalError(w, "failed to ingest document")
		return
	}

	response.OK(w, map[string]any{
		"filename":      result.Filename,
		"originalName":  header.Filename,
		"chunksCreated": result.ChunksCreated,
		"documentIds":   result.DocumentIDs,
	})
}

// Stats proxies the ingestion backend's collection stats
func (h *DocumentHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.ragClient.GetStats(r.Context())
	if err != nil {
		response.InternalError(w, "failed to load document stats")
		return
	}

	response.OK(w, map[string]any{
		"collectionName": stats.CollectionName,
		"totalDocuments": stats.TotalDocuments,
	})
}
