package api_router

import (
	"time"

	"github.com/haierkeys/jot-sync-service/internal/app"
	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"
	"github.com/haierkeys/jot-sync-service/internal/service"
	pkgapp "github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"
	"github.com/haierkeys/jot-sync-service/pkg/timex"

	"github.com/gin-gonic/gin"
)

// NoteHandler note API router handler
// NoteHandler 笔记 API 路由处理器，读操作直接访问用户笔记库，写操作经由用户写队列
type NoteHandler struct {
	*Handler
}

// NewNoteHandler creates NoteHandler instance
// NewNoteHandler 创建 NoteHandler 实例
func NewNoteHandler(a *app.App) *NoteHandler {
	return &NoteHandler{Handler: NewHandler(a)}
}

func (h *NoteHandler) respondNote(c *gin.Context, method string, status *code.Code, n *domain.Note) {
	record, err := dto.NewNoteRecord(n)
	if err != nil {
		h.fail(c, method, err)
		return
	}
	pkgapp.NewResponse(c).ToResponse(status.WithData(record))
}

// List searches notes
// @Summary Search notes
// @Description Filters are combined with AND, results are ordered by updated_at descending.
// @Description 各条件之间为 AND 关系，按 updated_at 降序返回。
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteSearchRequest true "Search Parameters"
// @Success 200 {object} pkgapp.Res{data=pkgapp.ListRes{list=[]dto.NoteRecord}} "Success"
// @Router /api/notes [get]
func (h *NoteHandler) List(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	params := &dto.NoteSearchRequest{}
	if !h.bind(c, "NoteHandler.List", params) {
		return
	}

	q, err := searchQuery(params, time.Now())
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}

	ctx := c.Request.Context()
	var notes []*domain.Note
	err = h.App.StoreService.View(ctx, uid, func(svc *service.NoteService) error {
		var err error
		notes, err = svc.Search(ctx, q)
		return err
	})
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}

	records, err := dto.NewNoteRecords(notes)
	if err != nil {
		h.fail(c, "NoteHandler.List", err)
		return
	}
	pkgapp.NewResponse(c).ToResponseList(code.Success, records, len(records))
}

// searchQuery 日期表达式先展开为区间，显式给出的 dateFrom/dateTo 覆盖对应边界
func searchQuery(params *dto.NoteSearchRequest, now time.Time) (*domain.SearchQuery, error) {
	r, err := timex.ParseDateTarget(params.Date, now)
	if err != nil {
		return nil, code.ErrorInvalidParams.WithDetails(err.Error())
	}
	q := &domain.SearchQuery{
		Text:           params.Text,
		Tags:           params.Tags,
		DateFrom:       r.From,
		DateTo:         r.To,
		IncludeDeleted: params.IncludeDeleted,
		Limit:          params.Limit,
	}
	if params.DateFrom != nil {
		q.DateFrom = params.DateFrom
	}
	if params.DateTo != nil {
		q.DateTo = params.DateTo
	}
	return q, nil
}

// Get resolves a note by id or unique id prefix
// @Summary Get note
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteGetRequest true "Note ID or prefix"
// @Success 200 {object} pkgapp.Res{data=dto.NoteRecord} "Success"
// @Router /api/note [get]
func (h *NoteHandler) Get(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	params := &dto.NoteGetRequest{}
	if !h.bind(c, "NoteHandler.Get", params) {
		return
	}

	ctx := c.Request.Context()
	var note *domain.Note
	err := h.App.StoreService.View(ctx, uid, func(svc *service.NoteService) error {
		var err error
		note, err = svc.Resolve(ctx, params.ID)
		return err
	})
	if err != nil {
		h.fail(c, "NoteHandler.Get", err)
		return
	}
	h.respondNote(c, "NoteHandler.Get", code.Success, note)
}

// Create creates a note
// @Summary Create note
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteCreateRequest true "Note"
// @Success 200 {object} pkgapp.Res{data=dto.NoteRecord} "Success"
// @Router /api/note [post]
func (h *NoteHandler) Create(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	params := &dto.NoteCreateRequest{}
	if !h.bind(c, "NoteHandler.Create", params) {
		return
	}

	ctx := c.Request.Context()
	var note *domain.Note
	err := h.App.StoreService.Update(ctx, uid, func(svc *service.NoteService) error {
		var err error
		note, err = svc.Create(ctx, params.Content, params.Tags, params.Date)
		return err
	})
	if err != nil {
		h.fail(c, "NoteHandler.Create", err)
		return
	}
	noteWrites.WithLabelValues("create").Inc()
	h.respondNote(c, "NoteHandler.Create", code.SuccessCreate, note)
}

// Update replaces content, tags and date of a note
// @Summary Update note
// @Tags Note
// @Security UserAuthToken
// @Accept json
// @Produce json
// @Param params body dto.NoteUpdateRequest true "Note"
// @Success 200 {object} pkgapp.Res{data=dto.NoteRecord} "Success"
// @Router /api/note [put]
func (h *NoteHandler) Update(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	params := &dto.NoteUpdateRequest{}
	if !h.bind(c, "NoteHandler.Update", params) {
		return
	}

	ctx := c.Request.Context()
	var note *domain.Note
	err := h.App.StoreService.Update(ctx, uid, func(svc *service.NoteService) error {
		var err error
		note, err = svc.Update(ctx, params.ID, params.Content, params.Tags, params.Date)
		return err
	})
	if err != nil {
		h.fail(c, "NoteHandler.Update", err)
		return
	}
	noteWrites.WithLabelValues("update").Inc()
	h.respondNote(c, "NoteHandler.Update", code.SuccessUpdate, note)
}

// Delete soft-deletes a note, the tombstone is returned
// @Summary Delete note
// @Tags Note
// @Security UserAuthToken
// @Produce json
// @Param params query dto.NoteGetRequest true "Note ID or prefix"
// @Success 200 {object} pkgapp.Res{data=dto.NoteRecord} "Success"
// @Router /api/note [delete]
func (h *NoteHandler) Delete(c *gin.Context) {
	uid, ok := h.uid(c)
	if !ok {
		return
	}
	params := &dto.NoteGetRequest{}
	if !h.bind(c, "NoteHandler.Delete", params) {
		return
	}

	ctx := c.Request.Context()
	var note *domain.Note
	err := h.App.StoreService.Update(ctx, uid, func(svc *service.NoteService) error {
		var err error
		note, err = svc.Delete(ctx, params.ID)
		return err
	})
	if err != nil {
		h.fail(c, "NoteHandler.Delete", err)
		return
	}
	noteWrites.WithLabelValues("delete").Inc()
	h.respondNote(c, "NoteHandler.Delete", code.SuccessDelete, note)
}
