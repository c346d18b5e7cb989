package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-todo-api/internal/middleware"
	"go-todo-api/internal/model"
	"go-todo-api/internal/service"
)

type TodoHandler struct {
	service *service.TodoService
	audit   *service.AuditService
}

func NewTodoHandler(service *service.TodoService, audit *service.AuditService) *TodoHandler {
	return &TodoHandler{service: service, audit: audit}
}

func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	todos, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, todos, nil)
}

func (h *TodoHandler) Search(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	todos, err := h.service.Search(r.Context(), identity.UserID, r.URL.Query().Get("title"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, todos, nil)
}

func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	id, err := todoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.service.Get(r.Context(), identity.UserID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, todo, nil)
}

func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	var payload model.CreateTodoRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.service.Create(r.Context(), identity.UserID, payload)
	if err != nil {
		h.audit.Log(r.Context(), model.AuditActionTodoCreate, actorFromRequest(r), model.AuditStatusFailure, "todo", err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), model.AuditActionTodoCreate, actorFromRequest(r), model.AuditStatusSuccess, todoResource(todo.ID), "")
	writeSuccess(w, http.StatusCreated, todo, nil)
}

// Update serves PUT and PATCH alike; absent fields keep their value.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	id, err := todoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var patch model.TodoPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	todo, err := h.service.Update(r.Context(), identity.UserID, id, patch)
	if err != nil {
		h.audit.Log(r.Context(), model.AuditActionTodoUpdate, actorFromRequest(r), model.AuditStatusFailure, todoResource(id), err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), model.AuditActionTodoUpdate, actorFromRequest(r), model.AuditStatusSuccess, todoResource(id), "")
	writeSuccess(w, http.StatusOK, todo, nil)
}

func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, model.ErrUnauthorized)
		return
	}

	id, err := todoIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		h.audit.Log(r.Context(), model.AuditActionTodoDelete, actorFromRequest(r), model.AuditStatusFailure, todoResource(id), err.Error())
		writeError(w, err)
		return
	}

	h.audit.Log(r.Context(), model.AuditActionTodoDelete, actorFromRequest(r), model.AuditStatusSuccess, todoResource(id), "")
	writeNoContent(w)
}

// todoIDParam treats anything that is not a positive integer as a missing todo.
func todoIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrTodoNotFound
	}
	return id, nil
}

func todoResource(id int64) string {
	return "todo:" + strconv.FormatInt(id, 10)
}
