package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/internal/model"
	"github.com/BuzzLyutic/task-manager-api/internal/service"
	"github.com/BuzzLyutic/task-manager-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req service.CreateTaskInput
	if err := decodeJSON(w, r, &req); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), u.ID, req, idempKey)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/tasks/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, err := taskID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.Get(r.Context(), u.ID, id)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	u, ok := h.owner(w, r)
	if !ok {
		return
	}
	filter, err := parseFilter(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	tasks, err := h.service.List(r.Context(), u.ID, filter)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, err := taskID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	var patch model.TaskPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	task, err := h.service.Update(r.Context(), u.ID, id, patch)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, ok := h.owner(w, r)
	if !ok {
		return
	}
	id, err := taskID(r)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), u.ID, id); err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	u, ok := h.owner(w, r)
	if !ok {
		return
	}

	stats, err := h.service.GetStats(r.Context(), u.ID)
	if err != nil {
		handleErrors(w, r, h.logger, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) owner(w http.ResponseWriter, r *http.Request) (model.PublicUser, bool) {
	u, ok := UserFromContext(r.Context())
	if !ok {
		handleErrors(w, r, h.logger, service.ErrUnauthorized)
	}
	return u, ok
}

func parseFilter(r *http.Request) (model.TaskFilter, error) {
	q := r.URL.Query()
	filter := model.DefaultTaskFilter()

	if v := q.Get("status"); v != "" {
		s := model.TaskStatus(v)
		filter.Status = &s
	}
	if q.Has("search") {
		s := q.Get("search")
		filter.Search = &s
	}
	if v := q.Get("sort_by"); v != "" {
		filter.SortBy = model.SortField(v)
	}
	if v := q.Get("sort_order"); v != "" {
		filter.SortOrder = model.SortOrder(v)
	}

	var err error
	if filter.Page, err = intParam(q.Get("page"), "page", filter.Page); err != nil {
		return filter, err
	}
	if filter.Limit, err = intParam(q.Get("limit"), "limit", filter.Limit); err != nil {
		return filter, err
	}
	return filter, nil
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalid("%s must be an integer", name)
	}
	return n, nil
}
