package http

import (
	"net/http"
	"strconv"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const maxHistoryLimit = 500

type HistoryHandler struct {
	historyUC usecase.SyncHistoryUC
	logger    logger.Logger
}

func NewHistoryHandler(historyUC usecase.SyncHistoryUC, logger logger.Logger) *HistoryHandler {
	return &HistoryHandler{historyUC: historyUC, logger: logger}
}

// list
//
//	@Summary		Журнал синхронизации
//	@Description	Возвращает записи журнала, новые первыми
//	@Tags			history
//	@Produce		json
//	@Param			item_id		query		string	false	"ID товара"
//	@Param			supplier_id	query		string	false	"ID поставщика"
//	@Param			sync_type	query		string	false	"Тип этапа"
//	@Param			limit		query		int		false	"Количество записей"
//	@Success		200			{array}		HistoryResponse
//	@Failure		400			{object}	ErrorResponse	"Ошибка валидации"
//	@Router			/sync/history [get]
func (h *HistoryHandler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseHistoryFilter(r)
	if err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	records, err := h.historyUC.List(r.Context(), filter)
	if err != nil {
		h.logger.Errorf(err, "failed to list sync history")
		WriteError(w, err)
		return
	}

	resp := make([]HistoryResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toHistoryResponse(rec))
	}

	WriteSuccess(w, http.StatusOK, resp)
}

// get
//
//	@Summary		Запись журнала синхронизации
//	@Tags			history
//	@Produce		json
//	@Param			id	path		string	true	"ID записи"
//	@Success		200	{object}	HistoryResponse
//	@Failure		404	{object}	ErrorResponse	"Запись не найдена"
//	@Router			/sync/history/{id} [get]
func (h *HistoryHandler) get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.historyUC.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Warnf("%s", err.Error())
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, toHistoryResponse(rec))
}

func parseHistoryFilter(r *http.Request) (usecase.SyncHistoryFilter, error) {
	q := r.URL.Query()
	var filter usecase.SyncHistoryFilter

	if v := q.Get("item_id"); v != "" {
		filter.ItemID = &v
	}
	if v := q.Get("supplier_id"); v != "" {
		filter.SupplierID = &v
	}
	if v := q.Get("sync_type"); v != "" {
		st := domain.SyncType(v)
		filter.SyncType = &st
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 || limit > maxHistoryLimit {
			return filter, e.Wrap("invalid limit "+v, e.ErrStatusBadRequest)
		}
		filter.Limit = limit
	}

	return filter, nil
}
