package note

import (
	"github.com/gin-gonic/gin"
	"github.com/notevault/core/internal/middleware"
	"github.com/notevault/core/internal/models"
	"github.com/notevault/core/internal/pkg/pagination"
	"github.com/notevault/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	notes := rg.Group("/notes", authMW)

	notes.GET("", h.list)
	notes.GET("/:id", h.getByID)
	notes.POST("", h.create)
	notes.PUT("/:id", h.update)
	notes.PATCH("/:id", h.update)
	notes.DELETE("/:id", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	notes, pag, err := h.svc.List(middleware.UserID(c), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, notes, pag)
}

func (h *Handler) getByID(c *gin.Context) {
	note, err := h.svc.GetByID(c.Param("id"), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if note == nil {
		response.NotFoundMsg(c, "note not found")
		return
	}
	response.OK(c, note)
}

func (h *Handler) create(c *gin.Context) {
	var dto createNoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	n := models.NoteModel{
		UserID:  middleware.UserID(c),
		Title:   dto.Title,
		Text:    dto.Text,
		Mood:    dto.Mood,
		Weather: dto.Weather,
	}
	if dto.IsPublished != nil {
		n.IsPublished = *dto.IsPublished
	}
	if dto.Bookmark != nil {
		n.Bookmark = *dto.Bookmark
	}

	if err := h.svc.Create(&n); err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, n)
}

func (h *Handler) update(c *gin.Context) {
	var dto updateNoteDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	note, err := h.svc.Update(c.Param("id"), middleware.UserID(c), dto.changes())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if note == nil {
		response.NotFoundMsg(c, "note not found")
		return
	}
	response.OK(c, note)
}

func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(c.Param("id"), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFoundMsg(c, "note not found")
		return
	}
	response.NoContent(c)
}
