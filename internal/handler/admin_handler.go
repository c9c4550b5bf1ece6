package handler

import (
	"bytes"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/askthebridge/bridge/internal/model"
	"github.com/askthebridge/bridge/internal/pkg/errcode"
	"github.com/askthebridge/bridge/internal/pkg/response"
	"github.com/askthebridge/bridge/internal/pkg/timeutil"
	"github.com/askthebridge/bridge/internal/repo"
	"github.com/askthebridge/bridge/internal/service"
)

// AdminHandler hosts the curation surface: partners, experts and knowledge
// ingestion. Routes sit behind authentication.
type AdminHandler struct {
	ingest   *service.IngestService
	partners *repo.PartnerRepo
	experts  *repo.ExpertRepo
}

func NewAdminHandler(ingest *service.IngestService, partners *repo.PartnerRepo, experts *repo.ExpertRepo) *AdminHandler {
	return &AdminHandler{ingest: ingest, partners: partners, experts: experts}
}

type createPartnerRequest struct {
	ID         string `json:"id"`
	BadgeLabel string `json:"badge_label"`
}

func (h *AdminHandler) CreatePartner(c *gin.Context) {
	var req createPartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BadgeLabel == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	partner := &model.Partner{
		ID:         req.ID,
		BadgeLabel: req.BadgeLabel,
		Active:     1,
		Ctime:      timeutil.NowUnix(),
	}
	if partner.ID == "" {
		partner.ID = service.NewID()
	}
	if err := h.partners.Create(c.Request.Context(), partner); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, partner)
}

func (h *AdminHandler) ListPartners(c *gin.Context) {
	partners, err := h.partners.ListActive(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"partners": partners})
}

type createExpertRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

func (h *AdminHandler) CreateExpert(c *gin.Context) {
	var req createExpertRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Name == "" || req.Email == "" {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	if req.Role != model.ExpertRoleSpecialist && req.Role != model.ExpertRoleAmbassador {
		response.Error(c, errcode.ErrInvalid, "invalid expert role")
		return
	}
	expert := &model.Expert{
		ID:          service.NewID(),
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Description: req.Description,
		Active:      1,
		Ctime:       timeutil.NowUnix(),
	}
	if err := h.experts.Create(c.Request.Context(), expert); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, expert)
}

type ingestQARequest struct {
	PartnerID string `json:"partner_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

func (h *AdminHandler) IngestQA(c *gin.Context) {
	var req ingestQARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	entry, err := h.ingest.IngestQA(c.Request.Context(), req.PartnerID, req.Question, req.Answer)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, entry)
}

// IngestDocument accepts multipart form data: partner_id, title, text
// (extracted document content) and an optional file to archive.
func (h *AdminHandler) IngestDocument(c *gin.Context) {
	partnerID := c.PostForm("partner_id")
	title := c.PostForm("title")
	text := c.PostForm("text")
	if partnerID == "" || title == "" || text == "" {
		response.Error(c, errcode.ErrInvalid, "partner_id, title and text are required")
		return
	}

	var file *seekableBuffer
	var fileSize int64
	if header, err := c.FormFile("file"); err == nil {
		opened, err := header.Open()
		if err != nil {
			response.Error(c, errcode.ErrInvalid, "failed to open file")
			return
		}
		defer opened.Close()
		data, err := io.ReadAll(opened)
		if err != nil {
			response.Error(c, errcode.ErrIngestFailed, "failed to read file")
			return
		}
		file = &seekableBuffer{Reader: bytes.NewReader(data)}
		fileSize = int64(len(data))
	}

	var result *service.IngestResult
	var err error
	if file != nil {
		result, err = h.ingest.IngestDocument(c.Request.Context(), partnerID, title, text, file, fileSize)
	} else {
		result, err = h.ingest.IngestDocument(c.Request.Context(), partnerID, title, text, nil, 0)
	}
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

type seekableBuffer struct {
	*bytes.Reader
}

func (b *seekableBuffer) Close() error {
	return nil
}
