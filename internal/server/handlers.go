package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/regionplot/internal/app"
	"github.com/roach88/regionplot/internal/selection"
)

type handlers struct {
	page    Page
	chart   FrameSource
	title   string
	timeout time.Duration
	logger  *slog.Logger
}

type pageData struct {
	Title   string
	Status  app.Status
	Ready   bool
	Label   string
	Options []string
	Current string
}

// selectRequest is the body of POST /api/selection.
type selectRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *handlers) index(c *gin.Context) {
	v := h.page.View()
	label := v.Records.Schema().Secondary
	if label != "" {
		label = cases.Title(language.English).String(label) + ":"
	}
	c.HTML(http.StatusOK, "page.html", pageData{
		Title:   h.title,
		Status:  v.Status,
		Ready:   v.Status.Ready(),
		Label:   label,
		Options: v.Selection.Options,
		Current: v.Selection.Selector,
	})
}

func (h *handlers) chartFrame(c *gin.Context) {
	frame := h.chart.Latest()
	if frame.Seq == 0 {
		c.String(http.StatusServiceUnavailable, h.page.Status().Message)
		return
	}
	c.Header("X-Chart-Seq", strconv.Itoa(frame.Seq))
	c.Data(http.StatusOK, "text/html; charset=utf-8", frame.HTML)
}

func (h *handlers) selectForm(c *gin.Context) {
	value := c.PostForm("value")
	if value == "" {
		c.String(http.StatusBadRequest, "missing value")
		return
	}
	if status, msg := h.apply(c, value); status != http.StatusOK {
		c.String(status, msg)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *handlers) status(c *gin.Context) {
	c.JSON(http.StatusOK, h.page.Status())
}

// requireReady answers 503 with the status message until records are
// installed.
func (h *handlers) requireReady(c *gin.Context) {
	st := h.page.Status()
	if !st.Ready() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":  st.Message,
			"status": st,
		})
		return
	}
	c.Next()
}

func (h *handlers) options(c *gin.Context) {
	v := h.page.View()
	c.JSON(http.StatusOK, gin.H{
		"options":  v.Selection.Options,
		"selected": v.Selection.Selector,
	})
}

func (h *handlers) selection(c *gin.Context) {
	c.JSON(http.StatusOK, h.page.View().Selection)
}

func (h *handlers) selectJSON(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if status, msg := h.apply(c, req.Value); status != http.StatusOK {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, h.page.View().Selection)
}

func (h *handlers) records(c *gin.Context) {
	rs := h.page.View().Records
	category, filtered := c.GetQuery("category")
	if filtered {
		if !rs.HasCategory(category) {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown category " + category})
			return
		}
		rs = rs.Filter(category)
	}
	data, err := rs.MarshalJSON()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// apply submits value and maps the outcome to an HTTP status.
func (h *handlers) apply(c *gin.Context, value string) (int, string) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	err := h.page.Select(ctx, app.SourceHTTP, value)
	switch {
	case err == nil:
		return http.StatusOK, ""
	case selection.IsUnknownOption(err):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app.ErrNotReady):
		return http.StatusServiceUnavailable, h.page.Status().Message
	default:
		h.logger.Error("selection failed", "value", value, "error", err)
		return http.StatusInternalServerError, err.Error()
	}
}
