package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"taskgrid.org/internal/auth"
	"taskgrid.org/internal/task"
)

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Status      string `json:"status"`
	OwnerID     string `json:"owner_id"`
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      *string `json:"status"`
	OwnerID     *string `json:"owner_id"`
}

type listTasksResponse struct {
	Items []*task.Task `json:"items"`
	AsOf  time.Time    `json:"as_of"`
}

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listTasks(w, r)
	case http.MethodPost:
		a.createTask(w, r)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v1/tasks/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a.getTask(w, r, id)
	case http.MethodPut:
		a.updateTask(w, r, id)
	case http.MethodDelete:
		a.deleteTask(w, r, id)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

func (a *API) listTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	tasks, err := a.tasks.List(r.Context(), actor)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}
	writeJSON(w, http.StatusOK, listTasksResponse{Items: tasks, AsOf: time.Now().UTC()})
}

func (a *API) getTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	t, err := a.tasks.Get(r.Context(), actor, id)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (a *API) createTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	input := task.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     strings.TrimSpace(req.OwnerID),
	}
	if strings.TrimSpace(req.Category) != "" {
		category, err := task.ParseCategory(req.Category)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		input.Category = category
	}
	if strings.TrimSpace(req.Status) != "" {
		status, err := task.ParseStatus(req.Status)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		input.Status = status
	}

	created, err := a.tasks.Create(r.Context(), actor, input)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	a.publish("CREATE", created, actor)
	w.Header().Set("Location", "/v1/tasks/"+created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) updateTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req updateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	patch := task.UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
	}
	if req.Category != nil {
		category, err := task.ParseCategory(*req.Category)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		patch.Category = &category
	}
	if req.Status != nil {
		status, err := task.ParseStatus(*req.Status)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		patch.Status = &status
	}

	updated, err := a.tasks.Update(r.Context(), actor, id, patch)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	a.publish("UPDATE", updated, actor)
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) deleteTask(w http.ResponseWriter, r *http.Request, id string) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}
	deleted, err := a.tasks.Delete(r.Context(), actor, id)
	if err != nil {
		handleTaskError(w, r, err)
		return
	}
	a.publish("DELETE", deleted, actor)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func handleTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, task.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, task.ErrPermissionDenied):
		writeError(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, task.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
