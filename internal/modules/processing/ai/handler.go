package ai

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/notevault/core/internal/middleware"
	"github.com/notevault/core/internal/pkg/response"
)

// NoteSource supplies note content owned by a user. Implemented by the
// notes module; the pipeline itself never touches note storage.
type NoteSource interface {
	GetText(ctx context.Context, noteID, userID string) (string, error)
}

// ErrNoteNotFound is returned by NoteSource implementations when the note
// does not exist or belongs to someone else.
var ErrNoteNotFound = errors.New("note not found")

type Handler struct {
	svc              *Service
	tasks            *TaskRunner   // nil when redis is unavailable
	store            *SummaryStore // nil when the durable tier is off
	notes            NoteSource
	batchConcurrency int
}

func NewHandler(svc *Service, tasks *TaskRunner, store *SummaryStore, notes NoteSource, batchConcurrency int) *Handler {
	return &Handler{svc: svc, tasks: tasks, store: store, notes: notes, batchConcurrency: batchConcurrency}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/ai", authMW)

	g.POST("/summaries/generate", h.generateSummary)
	g.POST("/summaries/batch", h.batchSummaries)
	g.GET("/summaries/note/:id", h.getSummaryByNote)
	g.GET("/usage", h.getUsage)

	if h.tasks != nil {
		g.POST("/summaries/task", h.createSummaryTask)
		g.GET("/tasks/:id", h.getTask)
	}
}

// POST /ai/summaries/generate
func (h *Handler) generateSummary(c *gin.Context) {
	var dto generateSummaryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	req, err := h.resolveRequest(c, dto)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.svc.Summarize(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, result)
}

// POST /ai/summaries/batch
func (h *Handler) batchSummaries(c *gin.Context) {
	var dto batchSummaryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if len(dto.Requests) == 0 {
		response.BadRequest(c, "requests must not be empty")
		return
	}

	requests := make([]SummaryRequest, len(dto.Requests))
	resolveErrs := make([]error, len(dto.Requests))
	for i, item := range dto.Requests {
		req, err := h.resolveRequest(c, item)
		if err != nil {
			// Unresolvable items become per-item outcomes, not a batch abort.
			resolveErrs[i] = err
			continue
		}
		requests[i] = req
	}

	outcomes := h.svc.SummarizeBatch(c.Request.Context(), requests, h.batchConcurrency)

	items := make([]batchItemResponse, len(outcomes))
	for i, out := range outcomes {
		items[i].NoteID = dto.Requests[i].NoteID
		err := resolveErrs[i]
		if err == nil {
			err = out.Err
		}
		if err != nil {
			e := AsError(err)
			items[i].Error = e.Message
			items[i].ErrKind = string(e.Kind)
			continue
		}
		items[i].Result = out.Result
	}
	response.OK(c, items)
}

// GET /ai/summaries/note/:id?style=
func (h *Handler) getSummaryByNote(c *gin.Context) {
	style, ok := ParseStyle(c.Query("style"))
	if !ok {
		response.BadRequest(c, "unknown summary style")
		return
	}
	if h.store == nil {
		response.NotFoundMsg(c, "summary not found")
		return
	}

	row, err := h.store.GetByNote(c.Request.Context(), c.Param("id"), style)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if row == nil {
		response.NotFoundMsg(c, "summary not found")
		return
	}
	response.OK(c, row)
}

// GET /ai/usage
func (h *Handler) getUsage(c *gin.Context) {
	usage, err := h.svc.Usage(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, usage)
}

// POST /ai/summaries/task
func (h *Handler) createSummaryTask(c *gin.Context) {
	var dto createSummaryTaskDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	style, ok := ParseStyle(dto.Style)
	if !ok {
		response.BadRequest(c, "unknown summary style")
		return
	}

	task, err := h.tasks.EnqueueSummary(c.Request.Context(), dto.NoteID, middleware.UserID(c), style)
	if err != nil {
		if errors.Is(err, ErrNoteNotFound) {
			response.NotFoundMsg(c, "note not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"task_id": task.ID, "status": task.Status})
}

// GET /ai/tasks/:id
func (h *Handler) getTask(c *gin.Context) {
	task, err := h.tasks.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if task == nil {
		response.NotFoundMsg(c, "task not found")
		return
	}
	response.OK(c, task)
}

func (h *Handler) resolveRequest(c *gin.Context, dto generateSummaryDTO) (SummaryRequest, error) {
	style, ok := ParseStyle(dto.Style)
	if !ok {
		return SummaryRequest{}, newError(KindValidation, "unknown summary style")
	}

	userID := middleware.UserID(c)
	content := dto.Content
	if content == "" && dto.NoteID != "" {
		text, err := h.notes.GetText(c.Request.Context(), dto.NoteID, userID)
		if err != nil {
			if errors.Is(err, ErrNoteNotFound) {
				return SummaryRequest{}, newError(KindValidation, "note not found")
			}
			return SummaryRequest{}, wrapError(KindInternal, "note lookup failed", err)
		}
		content = text
	}

	return SummaryRequest{
		UserID:  userID,
		NoteID:  dto.NoteID,
		Content: content,
		Style:   style,
	}, nil
}

func (h *Handler) writeError(c *gin.Context, err error) {
	e := AsError(err)
	switch e.Kind {
	case KindValidation:
		response.BadRequest(c, e.Message)
	case KindQuotaExceeded:
		response.TooManyRequests(c, e.Message, e.RetryAfter)
	case KindUpstreamThrottled, KindUpstreamTransient:
		response.ServiceUnavailable(c, e.Message, e.RetryAfter)
	case KindUpstreamPermanent:
		response.BadGateway(c, e.Message)
	default:
		response.InternalError(c, errors.New(e.Message))
	}
}
