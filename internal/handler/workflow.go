package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"inspectoriq/internal/logger"
	"inspectoriq/internal/middleware"
	"inspectoriq/internal/report"
	"inspectoriq/internal/service"
	"inspectoriq/internal/template"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WorkflowHandler struct {
	workflows *service.WorkflowService
	upgrader  websocket.Upgrader
}

func NewWorkflowHandler(workflows *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{
		workflows: workflows,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// GET /api/templates
func (h *WorkflowHandler) Templates(c *gin.Context) {
	type tplView struct {
		ID     string           `json:"id"`
		Title  string           `json:"title"`
		Fields []template.Field `json:"fields"`
	}
	out := make([]tplView, 0, 3)
	for _, t := range template.All() {
		out = append(out, tplView{ID: t.ID, Title: t.Title, Fields: t.Fields})
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/workflow/template  body: {"template":"..."}
// Selecting a template is the only way past the initial screen; it resets
// the step to details.
func (h *WorkflowHandler) SelectTemplate(c *gin.Context) {
	var req struct {
		Template string `json:"template" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	f := h.flow(c)
	if err := f.Workflow.SelectTemplate(req.Template); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.stateView(f))
}

// PUT /api/workflow/step  body: {"step":"images"}
func (h *WorkflowHandler) GoToStep(c *gin.Context) {
	var req struct {
		Step string `json:"step" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	f := h.flow(c)
	if err := f.Workflow.GoTo(report.Step(req.Step)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.stateView(f))
}

// PUT /api/workflow/fields  body: {"fields":{"unit":"U-100",...}}
func (h *WorkflowHandler) SetFields(c *gin.Context) {
	var req struct {
		Fields map[string]string `json:"fields" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	d, ok := h.draft(c)
	if !ok {
		return
	}
	for k, v := range req.Fields {
		if err := d.SetField(k, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"fields": d.Fields()})
}

// POST /api/workflow/images accepts a multipart upload, one or more files under
// "images". File picker and drag-and-drop both land here, so the cap is
// enforced once for every entry point: all or nothing.
func (h *WorkflowHandler) AddImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid upload"})
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files"})
		return
	}

	d, ok := h.draft(c)
	if !ok {
		return
	}

	imgs := make([]report.Image, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
			return
		}
		imgs = append(imgs, report.Image{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	if err := d.AddImages(imgs...); err != nil {
		if errors.Is(err, report.ErrTooManyImages) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Up to " + strconv.Itoa(d.MaxImages()) + " images only"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": d.ImageCount(), "captions": d.Captions()})
}

// DELETE /api/workflow/images/:index
func (h *WorkflowHandler) RemoveImage(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}
	d, ok := h.draft(c)
	if !ok {
		return
	}
	if err := d.RemoveImage(idx); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": d.ImageCount(), "captions": d.Captions()})
}

// PUT /api/workflow/images/:index/caption  body: {"caption":"..."}
func (h *WorkflowHandler) SetCaption(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid index"})
		return
	}
	var req struct {
		Caption string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	d, ok := h.draft(c)
	if !ok {
		return
	}
	if err := d.SetCaption(idx, req.Caption); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"captions": d.Captions()})
}

// POST /api/workflow/generate
func (h *WorkflowHandler) Generate(c *gin.Context) {
	sess := middleware.Session(c)
	outcome, err := h.workflows.Generate(c.Request.Context(), sess, middleware.TabID(c))
	if err != nil {
		switch {
		case errors.Is(err, report.ErrNoSession):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": "/signin"})
		case errors.Is(err, report.ErrNoImages):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload at least one image"})
		case errors.Is(err, report.ErrBusy):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, report.ErrNoTemplate):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("generate.handler", "err", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate report"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":      outcome.Result.S3URL,
		"id":       outcome.Result.ID,
		"download": "/api/reports/download?name=" + outcome.DownloadFilename,
		"filename": outcome.DownloadFilename,
	})
}

// GET /api/workflow/progress returns a snapshot of the banner and progress value.
func (h *WorkflowHandler) Progress(c *gin.Context) {
	f := h.flow(c)
	c.JSON(http.StatusOK, gin.H{
		"progress":  f.Generator.Simulator().Value(),
		"banner":    f.Generator.Banner(),
		"generated": f.Generator.Generated(),
	})
}

// GET /api/workflow/progress/ws streams progress values while a
// submission is in flight.
func (h *WorkflowHandler) ProgressWS(c *gin.Context) {
	f := h.flow(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sim := f.Generator.Simulator()
	ch := sim.Subscribe()
	defer sim.Unsubscribe(ch)

	// Read pump: we expect no client messages, but reading is what surfaces
	// a disconnect while the flow is idle and nothing is being published.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := conn.WriteJSON(gin.H{"progress": sim.Value()}); err != nil {
		return
	}
	for {
		select {
		case <-closed:
			return
		case v := <-ch:
			if err := conn.WriteJSON(gin.H{"progress": v}); err != nil {
				return
			}
			if v >= 100 {
				return
			}
		}
	}
}

func (h *WorkflowHandler) flow(c *gin.Context) *service.Flow {
	sess := middleware.Session(c)
	return h.workflows.Flow(sess.ID, middleware.TabID(c))
}

func (h *WorkflowHandler) draft(c *gin.Context) (*report.Draft, bool) {
	d, err := h.flow(c).Workflow.Draft()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	return d, true
}

func (h *WorkflowHandler) stateView(f *service.Flow) gin.H {
	return gin.H{
		"template": f.Workflow.ActiveTemplate(),
		"step":     f.Workflow.Step(),
	}
}
