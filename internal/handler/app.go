package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/wisdom-share/internal/apperror"
	"github.com/sakif/wisdom-share/internal/model"
	"github.com/sakif/wisdom-share/internal/service"
)

type AppHandler struct {
	apps   *service.AppService
	logger *slog.Logger
}

func NewAppHandler(apps *service.AppService, logger *slog.Logger) *AppHandler {
	return &AppHandler{apps: apps, logger: logger}
}

// HandleAdd handles POST /api/app/add and returns the new id.
func (h *AppHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req model.AppAddRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	id, err := h.apps.Add(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, id)
}

// HandleDelete handles POST /api/app/delete with body {"id": n}.
func (h *AppHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req model.DeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.apps.Delete(r.Context(), caller(r), req.ID); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, true)
}

// HandleUpdate handles the admin-only POST /api/app/update.
func (h *AppHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req model.AppUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.apps.Update(r.Context(), caller(r), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, true)
}

// HandleEdit handles POST /api/app/edit.
func (h *AppHandler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	var req model.AppEditRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.apps.Edit(r.Context(), caller(r), req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, true)
}

// HandleGetVO handles GET /api/app/get/vo?id=n.
func (h *AppHandler) HandleGetVO(w http.ResponseWriter, r *http.Request) {
	id, err := queryInt64(r, "id")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	vo, err := h.apps.GetAppVO(r.Context(), caller(r), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, vo)
}

// HandleListPage handles the admin-only POST /api/app/list/page.
func (h *AppHandler) HandleListPage(w http.ResponseWriter, r *http.Request) {
	var req model.AppQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.apps.ListPage(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, page)
}

// HandleListVOPage handles POST /api/app/list/page/vo.
func (h *AppHandler) HandleListVOPage(w http.ResponseWriter, r *http.Request) {
	var req model.AppQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.apps.ListVOPage(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, page)
}

// HandleListMyVOPage handles POST /api/app/my/list/page/vo.
func (h *AppHandler) HandleListMyVOPage(w http.ResponseWriter, r *http.Request) {
	var req model.AppQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	page, err := h.apps.ListMyVOPage(r.Context(), caller(r), req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeSuccess(w, page)
}

// queryInt64 parses a required integer query parameter.
func queryInt64(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, apperror.ValidationFailed(name, name+" is required")
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.ValidationFailed(name, name+" must be an integer")
	}
	return n, nil
}
