package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"orgroles/internal/auth"
	"orgroles/internal/events"
	"orgroles/internal/metrics"
	"orgroles/internal/orgcsv"
)

// Structure bundles what the import and export endpoints need.
type Structure struct {
	Importer       *orgcsv.Importer
	Exporter       *orgcsv.Exporter
	Nonces         *auth.Nonces
	Events         *events.Dispatcher
	Log            *zap.Logger
	NoticeURL      string
	MaxUploadBytes int64
}

// notice reports an import/export outcome: browsers are redirected to the
// admin page with the message in the query, API callers get JSON.
func (s Structure) notice(c *gin.Context, status int, kind, msg string) {
	if auth.WantsHTML(c) {
		q := url.Values{"notice": {kind}, "msg": {msg}}
		sep := "?"
		if strings.Contains(s.NoticeURL, "?") {
			sep = "&"
		}
		c.Redirect(http.StatusSeeOther, s.NoticeURL+sep+q.Encode())
		return
	}
	c.JSON(status, gin.H{"notice": kind, "message": msg})
}

// Tokens issues the anti-forgery tokens of the import and export forms.
func (s Structure) Tokens() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := auth.Current(c).UserID
		imp, err := s.Nonces.Issue(auth.ActionImport, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}
		exp, err := s.Nonces.Issue(auth.ActionExport, uid)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"import_nonce": imp, "export_nonce": exp})
	}
}

// Import runs a batch upsert from an uploaded CSV or XLSX file.
func (s Structure) Import() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.MaxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxUploadBytes)
		}
		if !s.Nonces.Verify(formValue(c, "_nonce"), auth.ActionImport, auth.Current(c).UserID) {
			metrics.ObserveImportFailure()
			s.notice(c, http.StatusForbidden, "error", "Import failed: nonce invalid.")
			return
		}

		file, header, err := c.Request.FormFile("csv")
		if err != nil {
			file, header, err = c.Request.FormFile("file")
		}
		if err != nil {
			metrics.ObserveImportFailure()
			s.notice(c, http.StatusBadRequest, "error", "No file uploaded.")
			return
		}
		defer file.Close()

		var src orgcsv.RecordReader
		if strings.EqualFold(filepath.Ext(header.Filename), ".xlsx") || c.PostForm("format") == "xlsx" {
			src, err = orgcsv.XLSXRecords(file)
		} else {
			src = orgcsv.NewCSVReader(file)
		}

		ctx := c.Request.Context()
		var rep orgcsv.Report
		if err == nil {
			rep, err = s.Importer.Import(ctx, src)
		}
		if err != nil {
			metrics.ObserveImportFailure()
			s.Log.Warn("import rejected", zap.String("file", header.Filename), zap.Error(err))
			var missing *orgcsv.MissingColumnError
			switch {
			case errors.Is(err, orgcsv.ErrEmptyFile):
				s.notice(c, http.StatusBadRequest, "error", "Empty CSV.")
			case errors.As(err, &missing):
				s.notice(c, http.StatusBadRequest, "error", "CSV header missing required column: "+missing.Column)
			default:
				s.notice(c, http.StatusBadRequest, "error", "Unable to read uploaded file.")
			}
			return
		}

		metrics.ObserveImport(rep)
		s.Log.Info("import complete",
			zap.String("file", header.Filename),
			zap.Int("rows", rep.Rows),
			zap.Int("errors", rep.Errors),
		)
		s.Events.Emit(ctx, source(c).Event(events.ImportCompleted, "structure", 0, map[string]any{
			"file":    header.Filename,
			"rows":    rep.Rows,
			"created": rep.Created,
			"reused":  rep.Reused,
			"errors":  rep.Errors,
		}))
		s.notice(c, http.StatusOK, rep.Notice(), rep.String())
	}
}

// Export downloads the structure as CSV, or XLSX with format=xlsx.
func (s Structure) Export() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.Nonces.Verify(formValue(c, "_nonce"), auth.ActionExport, auth.Current(c).UserID) {
			s.notice(c, http.StatusForbidden, "error", "Export failed: nonce invalid.")
			return
		}

		format := strings.ToLower(formValue(c, "format"))
		if format == "" {
			format = "csv"
		}
		var (
			buf         bytes.Buffer
			err         error
			contentType string
		)
		switch format {
		case "csv":
			err = s.Exporter.WriteCSV(c.Request.Context(), &buf)
			contentType = "text/csv; charset=utf-8"
		case "xlsx":
			err = s.Exporter.WriteXLSX(c.Request.Context(), &buf)
			contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		default:
			s.notice(c, http.StatusBadRequest, "error", "Export failed: unknown format.")
			return
		}
		if err != nil {
			s.Log.Error("export failed", zap.Error(err))
			s.notice(c, http.StatusInternalServerError, "error", "Export failed.")
			return
		}

		metrics.ObserveExport(format)
		filename := fmt.Sprintf("org-structure-%s.%s", time.Now().Format("20060102-150405"), format)
		c.Header("Cache-Control", "no-store")
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, contentType, buf.Bytes())
	}
}
