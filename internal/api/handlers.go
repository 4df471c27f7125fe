package api

import (
	"errors"
	"net/http"

	"github.com/Veraticus/spendscore/internal/common"
	"github.com/Veraticus/spendscore/internal/importer"
	"github.com/Veraticus/spendscore/internal/model"
	"github.com/Veraticus/spendscore/internal/reporting"
	"github.com/Veraticus/spendscore/internal/service"
	"github.com/Veraticus/spendscore/internal/spendscore"
	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size for form fields and boundaries.
const multipartOverhead = 1 << 20

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.reports.Score(toModel(req.Transactions))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload+multipartOverhead)

	var form UploadForm
	if err := c.ShouldBind(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(c, common.ErrFileTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
		return
	}
	if err := validateStruct(form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format, err := importer.ParseFormat(form.Format)
	if err != nil {
		s.writeError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(c, common.ErrFileTooLarge)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if header.Size > s.maxUpload {
		s.writeError(c, common.ErrFileTooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		s.writeError(c, err)
		return
	}
	defer func() { _ = file.Close() }()

	parsed, err := s.loader.Parse(c.Request.Context(), header.Filename, file, format)
	if err != nil {
		s.writeError(c, err)
		return
	}

	report, err := s.reports.Generate(c.Request.Context(), reporting.Request{
		Title:            form.Title,
		Description:      form.Description,
		OriginalFilename: header.Filename,
		FileFormat:       string(parsed.Format),
		Transactions:     parsed.Transactions,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

func (s *Server) listReports(c *gin.Context) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
		return
	}
	if err := validateStruct(q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reports, err := s.reports.List(c.Request.Context(), service.ReportFilter{
		Status: model.ReportStatus(q.Status),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	if reports == nil {
		reports = []model.Report{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}

func (s *Server) getReport(c *gin.Context) {
	report, err := s.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) reportTrends(c *gin.Context) {
	trends, err := s.reports.Trends(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (s *Server) reportCategories(c *gin.Context) {
	categories, err := s.reports.Categories(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (s *Server) reportDuplicates(c *gin.Context) {
	pairs, err := s.reports.Duplicates(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	if pairs == nil {
		pairs = []spendscore.DuplicatePair{}
	}
	c.JSON(http.StatusOK, gin.H{"duplicates": pairs, "count": len(pairs)})
}

func (s *Server) regenerateReport(c *gin.Context) {
	report, err := s.reports.Regenerate(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) reportStats(c *gin.Context) {
	stats, err := s.reports.Stats(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) summary(c *gin.Context) {
	summary, err := s.reports.Summary(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) formats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"supported_formats": importer.SupportedFormats(),
		"max_file_size":     s.maxUpload,
	})
}

func (s *Server) deleteReport(c *gin.Context) {
	if err := s.reports.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors onto HTTP status codes.
func (s *Server) writeError(c *gin.Context, err error) {
	var (
		missing  *importer.MissingColumnsError
		tooLarge *http.MaxBytesError
		status   int
	)

	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrFileTooLarge), errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, spendscore.ErrEmptyInput),
		errors.Is(err, common.ErrNoTransactions),
		errors.Is(err, common.ErrUnsupportedFormat),
		errors.As(err, &missing):
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
		s.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	s.logger.Debug("Request rejected", "path", c.FullPath(), "status", status, "error", err)
	c.JSON(status, gin.H{"error": err.Error()})
}
