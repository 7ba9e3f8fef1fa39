package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appscoring "github.com/resumescore/backend/internal/application/scoring"
	"github.com/resumescore/backend/internal/domain/shared"
	"github.com/resumescore/backend/internal/interfaces/http/dto"
)

// defaultMaxUploadSize caps uploaded resume files at 10 MB
const defaultMaxUploadSize = 10 << 20

// ScoringService exposes the resume scoring operations used by the handler
type ScoringService interface {
	ScoreText(ctx context.Context, resumeText string) (*appscoring.AnalysisResult, error)
	ScoreUpload(ctx context.Context, req appscoring.UploadRequest) (*appscoring.AnalysisResult, error)
	GetAnalysis(ctx context.Context, id uuid.UUID) (*appscoring.AnalysisResult, error)
	ListAnalyses(ctx context.Context, filter shared.Filter) (*shared.Paginated[appscoring.AnalysisResult], error)
	DeleteAnalysis(ctx context.Context, id uuid.UUID) error
}

// ReportBuilder renders an analysis into a PDF report
type ReportBuilder interface {
	Build(ctx context.Context, result *appscoring.AnalysisResult) ([]byte, error)
}

// ArchiveDownloader produces presigned URLs for archived uploads
type ArchiveDownloader interface {
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
}

// ScoreHandler handles resume scoring API endpoints
type ScoreHandler struct {
	BaseHandler
	service       ScoringService
	reports       ReportBuilder
	archive       ArchiveDownloader
	maxUploadSize int64
}

// ScoreHandlerOption configures a ScoreHandler
type ScoreHandlerOption func(*ScoreHandler)

// WithReportBuilder attaches a PDF report builder
func WithReportBuilder(reports ReportBuilder) ScoreHandlerOption {
	return func(h *ScoreHandler) {
		h.reports = reports
	}
}

// WithArchiveDownloader attaches presigned download support for
// archived uploads
func WithArchiveDownloader(archive ArchiveDownloader) ScoreHandlerOption {
	return func(h *ScoreHandler) {
		h.archive = archive
	}
}

// WithMaxUploadSize overrides the upload size cap
func WithMaxUploadSize(size int64) ScoreHandlerOption {
	return func(h *ScoreHandler) {
		if size > 0 {
			h.maxUploadSize = size
		}
	}
}

// NewScoreHandler creates a new ScoreHandler
func NewScoreHandler(service ScoringService, opts ...ScoreHandlerOption) *ScoreHandler {
	h := &ScoreHandler{
		service:       service,
		maxUploadSize: defaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ScoreResume scores raw resume text posted as JSON.
// This is the legacy surface: the response body is the bare score object
// and errors are reported as {"detail": ...}.
func (h *ScoreHandler) ScoreResume(c *gin.Context) {
	var req appscoring.ScoreTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.DetailResponse{Detail: "Invalid request body"})
		return
	}

	result, err := h.service.ScoreText(c.Request.Context(), req.ResumeText)
	if err != nil {
		h.HandleDomainErrorDetail(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Score)
}

// UploadResume scores an uploaded resume file (PDF or JSON).
// Like ScoreResume, this keeps the legacy response shape.
func (h *ScoreHandler) UploadResume(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.service.ScoreUpload(c.Request.Context(), upload)
	if err != nil {
		h.HandleDomainErrorDetail(c, err)
		return
	}

	c.JSON(http.StatusOK, result.Score)
}

// readUpload pulls the multipart "file" part out of the request.
// On failure it writes the error response and returns ok=false.
func (h *ScoreHandler) readUpload(c *gin.Context) (appscoring.UploadRequest, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.DetailResponse{Detail: "No file uploaded"})
		return appscoring.UploadRequest{}, false
	}

	if fileHeader.Size > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, dto.DetailResponse{
			Detail: fmt.Sprintf("File exceeds the maximum size of %d bytes", h.maxUploadSize),
		})
		return appscoring.UploadRequest{}, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.DetailResponse{Detail: "Failed to read uploaded file"})
		return appscoring.UploadRequest{}, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.DetailResponse{Detail: "Failed to read uploaded file"})
		return appscoring.UploadRequest{}, false
	}
	if int64(len(data)) > h.maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, dto.DetailResponse{
			Detail: fmt.Sprintf("File exceeds the maximum size of %d bytes", h.maxUploadSize),
		})
		return appscoring.UploadRequest{}, false
	}

	return appscoring.UploadRequest{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// CreateTextAnalysis scores raw text and returns the full analysis record
func (h *ScoreHandler) CreateTextAnalysis(c *gin.Context) {
	var req appscoring.ScoreTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.service.ScoreText(c.Request.Context(), req.ResumeText)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// CreateUploadAnalysis scores an uploaded file and returns the full analysis record
func (h *ScoreHandler) CreateUploadAnalysis(c *gin.Context) {
	upload, ok := h.readUpload(c)
	if !ok {
		return
	}

	result, err := h.service.ScoreUpload(c.Request.Context(), upload)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// ListAnalyses returns stored analyses with pagination
func (h *ScoreHandler) ListAnalyses(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  map[string]interface{}{},
	}
	if source := c.Query("source"); source != "" {
		filter.Filters["source"] = source
	}
	if model := c.Query("model"); model != "" {
		filter.Filters["model"] = model
	}

	page, err := h.service.ListAnalyses(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetAnalysis returns a stored analysis by ID
func (h *ScoreHandler) GetAnalysis(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// DeleteAnalysis removes a stored analysis
func (h *ScoreHandler) DeleteAnalysis(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteAnalysis(c.Request.Context(), id); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// GetAnalysisReport renders a stored analysis as a PDF report
func (h *ScoreHandler) GetAnalysisReport(c *gin.Context) {
	if h.reports == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Report rendering is not configured")
		return
	}

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	pdf, err := h.reports.Build(c.Request.Context(), result)
	if err != nil {
		h.InternalError(c, "Failed to render report")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"analysis-%s.pdf\"", id))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ArchiveDownloadResponse carries a presigned URL for an archived upload
type ArchiveDownloadResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// DownloadAnalysisArchive answers a presigned URL for the archived
// upload behind a stored analysis
func (h *ScoreHandler) DownloadAnalysisArchive(c *gin.Context) {
	if h.archive == nil {
		h.Error(c, http.StatusServiceUnavailable, dto.ErrCodeInternal, "Archive storage is not configured")
		return
	}

	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.service.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	if result.ArchiveKey == "" {
		h.NotFound(c, "No archived file for this analysis")
		return
	}

	exists, err := h.archive.ObjectExists(c.Request.Context(), result.ArchiveKey)
	if err != nil {
		h.InternalError(c, "Failed to check the archived file")
		return
	}
	if !exists {
		h.NotFound(c, "Archived file is no longer available")
		return
	}

	// zero expiry defers to the archive's configured default
	url, expiresAt, err := h.archive.GenerateDownloadURL(c.Request.Context(), result.ArchiveKey, 0)
	if err != nil {
		h.InternalError(c, "Failed to generate download URL")
		return
	}

	h.Success(c, ArchiveDownloadResponse{DownloadURL: url, ExpiresAt: expiresAt})
}

// bindID parses the :id path parameter.
// On failure it writes the error response and returns ok=false.
func (h *ScoreHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid analysis ID")
		return uuid.Nil, false
	}
	return id, true
}

// RegisterRoutes registers analysis routes on the API group
func (h *ScoreHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analyses := rg.Group("/analyses")
	{
		analyses.POST("/text", h.CreateTextAnalysis)
		analyses.POST("/upload", h.CreateUploadAnalysis)
		analyses.GET("", h.ListAnalyses)
		analyses.GET("/:id", h.GetAnalysis)
		analyses.DELETE("/:id", h.DeleteAnalysis)
		analyses.GET("/:id/report", h.GetAnalysisReport)
		analyses.GET("/:id/download", h.DownloadAnalysisArchive)
	}
}

// RegisterLegacyRoutes registers the original flat scoring endpoints on the engine root
func (h *ScoreHandler) RegisterLegacyRoutes(engine *gin.Engine) {
	engine.POST("/score", h.ScoreResume)
	engine.POST("/upload", h.UploadResume)
}
