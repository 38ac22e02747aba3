package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"veridoc/internal/domain"
	"veridoc/internal/export"
	"veridoc/internal/port"
	"veridoc/internal/service"
)

// exportBatchLimit caps how many documents one export fetches.
const exportBatchLimit = 200

// ExportHandler handles document export endpoints.
type ExportHandler struct {
	docService service.DocumentService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(docService service.DocumentService) *ExportHandler {
	return &ExportHandler{docService: docService}
}

func exportFilter(c *gin.Context) port.DocumentFilter {
	return port.DocumentFilter{
		ApprovalStatus: domain.ApprovalStatus(c.Query("approval_status")),
		ParsingStatus:  domain.ParsingStatus(c.Query("parsing_status")),
		DocumentType:   c.Query("document_type"),
	}
}

func exportName(filter port.DocumentFilter) string {
	name := "documents"
	if filter.ApprovalStatus != "" {
		name = string(filter.ApprovalStatus)
	}
	if filter.DocumentType != "" {
		name += "_" + filter.DocumentType
	}
	return name
}

// ExportCSV handles GET /api/v1/documents/export/csv
// @Summary Export documents as CSV
// @Description Download documents matching the filters as a CSV file
// @Tags documents
// @Produce text/csv
// @Param approval_status query string false "Filter by approval status"
// @Param parsing_status query string false "Filter by parsing status"
// @Param document_type query string false "Filter by document type"
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /documents/export/csv [get]
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	filter := exportFilter(c)

	docs, _, err := h.docService.List(c.Request.Context(), filter, 0, exportBatchLimit)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	buf.Write(export.BOM)
	w := export.NewWriter(&buf)
	if err := w.WriteHeader(); err != nil {
		HandleError(c, err)
		return
	}
	if err := w.WriteDocuments(docs); err != nil {
		HandleError(c, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(exportName(filter), "csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// ExportXLSX handles GET /api/v1/documents/export/xlsx
// @Summary Export documents as XLSX
// @Description Download documents matching the filters as an Excel workbook
// @Tags documents
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param approval_status query string false "Filter by approval status"
// @Param parsing_status query string false "Filter by parsing status"
// @Param document_type query string false "Filter by document type"
// @Success 200 {string} string "XLSX file"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Security BearerAuth
// @Router /documents/export/xlsx [get]
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	filter := exportFilter(c)

	docs, _, err := h.docService.List(c.Request.Context(), filter, 0, exportBatchLimit)
	if err != nil {
		HandleError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, docs); err != nil {
		HandleError(c, err)
		return
	}

	filename := export.BuildFilename(exportName(filter), "xlsx")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
