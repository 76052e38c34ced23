package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"inspectoriq/internal/handoff"
	"inspectoriq/internal/middleware"
	"inspectoriq/internal/service"
	"inspectoriq/internal/storage"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct {
	reports *service.ReportService
	durable storage.ScopeProvider
	tabs    *storage.Tabs
}

func NewReportsHandler(reports *service.ReportService, durable storage.ScopeProvider, tabs *storage.Tabs) *ReportsHandler {
	return &ReportsHandler{reports: reports, durable: durable, tabs: tabs}
}

// GET /api/reports?status=&search=&sort=&page=
// Always re-fetched from upstream; the list view calls this on mount and on
// window focus.
func (h *ReportsHandler) List(c *gin.Context) {
	sess := middleware.Session(c)
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	q := service.ListQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Sort:   c.DefaultQuery("sort", "recent"),
		Page:   page,
	}
	out, err := h.reports.List(c.Request.Context(), sess, q)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to load reports"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// DELETE /api/reports/:id
func (h *ReportsHandler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	sess := middleware.Session(c)
	if err := h.reports.Delete(c.Request.Context(), sess, id); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not delete report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/reports/:id/view  body: {"url":"https://..."}
// Stages the handoff for a viewer opened in a new tab.
func (h *ReportsHandler) PrepareView(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	sess := middleware.Session(c)
	if err := h.reports.PrepareView(sess, req.URL, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewer": "/report-editor"})
}

// GET /api/reports/download?name=...
// Streams the most recently staged document as an attachment. Unlike the
// viewer, the download needs only the URL: the generation response may not
// carry a report id.
func (h *ReportsHandler) Download(c *gin.Context) {
	sess := middleware.Session(c)
	tab := h.tabs.For(sess.ID, middleware.TabID(c))
	docURL, err := handoff.ReadURL(tab, h.durable.For(sess.ID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No generated report available"})
		return
	}

	name := c.DefaultQuery("name", "report.docx")
	body, contentType, err := h.reports.Download(c.Request.Context(), docURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Download failed"})
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	io.Copy(c.Writer, body)
}

// GET /api/viewer resolves the handoff for the viewer page: tab scope
// first, then durable. Missing keys send the user back to the dashboard.
func (h *ReportsHandler) Viewer(c *gin.Context) {
	sess := middleware.Session(c)
	tab := h.tabs.For(sess.ID, middleware.TabID(c))
	p, err := handoff.Read(tab, h.durable.For(sess.ID))
	if err != nil {
		if errors.Is(err, handoff.ErrNoHandoff) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No report selected to view.", "redirect": "/dashboard"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":      p.URL,
		"frameUrl": handoff.FrameURL(p.URL),
		"reportId": p.ID,
	})
}
