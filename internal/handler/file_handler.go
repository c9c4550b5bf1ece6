package handler

import (
	"errors"
	"io"
	"io/fs"

	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/filestore"
	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/pkg/response"
	"github.com/askthebridge/bridge/internal/repo"
)

// FileHandler serves archived partner source documents by document id.
type FileHandler struct {
	store     filestore.Store
	documents *repo.DocumentRepo
}

func NewFileHandler(store filestore.Store, documents *repo.DocumentRepo) *FileHandler {
	return &FileHandler{store: store, documents: documents}
}

func (h *FileHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	if doc.FileKey == "" {
		response.Error(c, errcode.ErrNotFound, "document has no archived file")
		return
	}
	reader, err := h.store.Open(c.Request.Context(), doc.FileKey)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			response.Error(c, errcode.ErrNotFound, "file not found")
			return
		}
		handleError(c, err)
		return
	}
	defer reader.Close()
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", `attachment; filename="`+doc.Title+`"`)
	c.Status(200)
	_, _ = io.Copy(c.Writer, reader)
}
