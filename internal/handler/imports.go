package handler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"inventapro/internal/apierror"
	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type ImportsHandler struct {
	imports  service.ProductImportService
	jobs     service.ImportJobService
	maxBytes int64
	timeout  time.Duration
}

func NewImportsHandler(imports service.ProductImportService, jobs service.ImportJobService, maxBytes int64, timeout time.Duration) *ImportsHandler {
	return &ImportsHandler{imports: imports, jobs: jobs, maxBytes: maxBytes, timeout: timeout}
}

// Import godoc
// @Summary      Import products from a spreadsheet
// @Description  Runs the batch inline unless async=true, in which case 202 and a job id are returned.
// @Tags         imports
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        file          formData  file    true   "xlsx or csv file"
// @Param        async         query     bool    false  "Queue the import as a background job"
// @Param        notify_email  query     string  false  "Address for the error report (async only)"
// @Success      200  {object} dto.ImportResponse
// @Success      202  {object} dto.ImportJobResponse
// @Failure      400  {object} apierror.APIError
// @Failure      413  {object} apierror.APIError
// @Failure      422  {object} dto.ImportResponse
// @Failure      504  {object} apierror.APIError
// @Router       /v1/products/import [post]
func (h *ImportsHandler) Import(c *gin.Context) {
	var q dto.ImportProductsQuery
	if !bindQuery(c, &q) {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, apierror.New("The file exceeds the upload limit"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New("A file is required in field 'file'"))
		return
	}
	if err := infra.CheckFormat(fh.Filename); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Only .xlsx and .csv files are supported"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.Error(err)
		return
	}
	defer f.Close()

	if q.Async {
		h.enqueue(c, fh, f, q.NotifyEmail)
		return
	}

	reader, err := service.OpenImportFile(fh.Filename, f)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("The file could not be read"))
		return
	}
	defer reader.Close()

	res, err := h.imports.Import(c.Request.Context(), reader, service.ImportOptions{FileName: fh.Filename, Timeout: h.timeout})
	switch {
	case errors.Is(err, service.ErrImportTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"detail": err.Error(),
			"result": service.ToImportResponse(res),
		})
		return
	case errors.Is(err, context.Canceled):
		log.Warn().Str("file", fh.Filename).Msg("import aborted: client went away")
		c.Status(499)
		return
	case err != nil:
		log.Warn().Err(err).Str("file", fh.Filename).Msg("import aborted: unreadable file")
		c.JSON(http.StatusBadRequest, gin.H{
			"detail": "The file could not be read completely",
			"result": service.ToImportResponse(res),
		})
		return
	}

	resp := service.ToImportResponse(res)
	if res.Failed() > 0 {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ImportsHandler) enqueue(c *gin.Context, fh *multipart.FileHeader, f multipart.File, notifyEmail string) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		c.Error(err)
		return
	}
	job, err := h.jobs.Enqueue(c.Request.Context(), fh.Filename, buf.Bytes(), notifyEmail)
	if err != nil {
		c.Error(err)
		return
	}
	c.Header("Location", "/v1/products/import/jobs/"+job.JobID)
	c.JSON(http.StatusAccepted, job)
}

// Job godoc
// @Summary  Background import job status
// @Tags     imports
// @Produce  json
// @Security BearerAuth
// @Param    id   path      string  true  "Job ID"
// @Success  200  {object}  dto.ImportJobResponse
// @Failure  404  {object}  apierror.APIError
// @Router   /v1/products/import/jobs/{id} [get]
func (h *ImportsHandler) Job(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	job, err := h.jobs.Status(c.Request.Context(), id)
	if errors.Is(err, service.ErrImportJobNotFound) {
		c.JSON(http.StatusNotFound, apierror.New("Import job not found"))
		return
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// Template godoc
// @Summary  Download the import template
// @Tags     imports
// @Produce  application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce  text/csv
// @Security BearerAuth
// @Param    format  query  string  false  "xlsx (default) or csv"
// @Success  200     {file} binary
// @Router   /v1/products/import/template [get]
func (h *ImportsHandler) Template(c *gin.Context) {
	var q dto.ImportTemplateQuery
	if !bindQuery(c, &q) {
		return
	}

	var buf bytes.Buffer
	contentType := "text/csv"
	var err error
	if q.Format == "csv" {
		err = infra.WriteCSVTemplate(&buf, service.ImportColumns)
	} else {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		err = infra.WriteXLSXTemplate(&buf, service.ImportColumns, service.ImportInstructions)
	}
	if err != nil {
		c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="product-import-template.`+q.Format+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Logs godoc
// @Summary  Recent import runs
// @Tags     imports
// @Produce  json
// @Security BearerAuth
// @Param    limit  query  int  false  "Max entries (default 50, max 100)"
// @Success  200  {object}  map[string][]dto.ImportLogResponse
// @Router   /v1/products/import/logs [get]
func (h *ImportsHandler) Logs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.imports.RecentLogs(c.Request.Context(), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": logs})
}
