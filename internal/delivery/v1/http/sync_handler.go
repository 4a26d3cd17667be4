package http

import (
	"net/http"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
)

type SyncHandler struct {
	ingestUC    usecase.IngestUC
	normalizeUC usecase.NormalizeUC
	publishUC   usecase.PublishUC
	updateUC    usecase.MarketUpdateUC
	ordersUC    usecase.CollectOrdersUC
	logger      logger.Logger
}

func NewSyncHandler(ingestUC usecase.IngestUC, normalizeUC usecase.NormalizeUC, publishUC usecase.PublishUC,
	updateUC usecase.MarketUpdateUC, ordersUC usecase.CollectOrdersUC, logger logger.Logger) *SyncHandler {
	return &SyncHandler{
		ingestUC:    ingestUC,
		normalizeUC: normalizeUC,
		publishUC:   publishUC,
		updateUC:    updateUC,
		ordersUC:    ordersUC,
		logger:      logger,
	}
}

// ingest
//
//	@Summary		Сбор товаров у поставщика
//	@Description	Загружает товары учётной записи поставщика, сохраняет их и кэширует
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		IngestRequest					true	"Параметры сбора"
//	@Success		200		{object}	StageResponse[ItemResponse]		"Все товары обработаны"
//	@Success		207		{object}	StageResponse[ItemResponse]		"Часть товаров не обработана"
//	@Failure		400		{object}	ErrorResponse					"Ошибка валидации"
//	@Failure		500		{object}	StageResponse[ItemResponse]		"Запуск не удался"
//	@Router			/sync/ingest [post]
func (h *SyncHandler) ingest(w http.ResponseWriter, r *http.Request) {
	var body IngestRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.ingestUC.Execute(r.Context(), req)
	h.logStage("ingest", err)
	WriteSuccess(w, stageStatus(err), newStageResponse(res, err, toItemResponse))
}

// categories
//
//	@Summary		Синхронизация категорий поставщика
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CategoriesRequest	true	"Учётная запись поставщика"
//	@Success		200		{array}		CategoryResponse
//	@Failure		400		{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		404		{object}	ErrorResponse	"Учётная запись не найдена"
//	@Router			/sync/categories [post]
func (h *SyncHandler) categories(w http.ResponseWriter, r *http.Request) {
	var body CategoriesRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}
	if body.SupplierID == "" || body.AccountID == "" {
		WriteError(w, e.ErrMissingFields)
		return
	}

	categories, err := h.ingestUC.SyncCategories(r.Context(), body.SupplierID, body.AccountID)
	if err != nil {
		h.logger.Errorf(err, "category sync failed for %s/%s", body.SupplierID, body.AccountID)
		WriteError(w, err)
		return
	}

	resp := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		resp = append(resp, toCategoryResponse(c))
	}

	WriteSuccess(w, http.StatusOK, resp)
}

// normalize
//
//	@Summary		Нормализация товаров
//	@Description	Применяет правила нормализации к сохранённым товарам поставщика
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		NormalizeRequest				true	"Параметры нормализации"
//	@Success		200		{object}	StageResponse[ItemResponse]		"Все товары обработаны"
//	@Success		207		{object}	StageResponse[ItemResponse]		"Часть товаров не обработана"
//	@Failure		400		{object}	ErrorResponse					"Ошибка валидации"
//	@Failure		500		{object}	StageResponse[ItemResponse]		"Запуск не удался"
//	@Router			/sync/normalize [post]
func (h *SyncHandler) normalize(w http.ResponseWriter, r *http.Request) {
	var body NormalizeRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.normalizeUC.Execute(r.Context(), req)
	h.logStage("normalize", err)
	WriteSuccess(w, stageStatus(err), newStageResponse(res, err, toItemResponse))
}

// publish
//
//	@Summary		Выгрузка товаров на маркетплейс
//	@Description	Выгружает товары от имени учётной записи маркетплейса. dry_run только проверяет товары
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		PublishRequest					true	"Параметры выгрузки"
//	@Success		200		{object}	StageResponse[UploadResponse]	"Все товары выгружены"
//	@Success		207		{object}	StageResponse[UploadResponse]	"Часть товаров не выгружена"
//	@Failure		400		{object}	ErrorResponse					"Ошибка валидации"
//	@Failure		500		{object}	StageResponse[UploadResponse]	"Запуск не удался"
//	@Router			/sync/publish [post]
func (h *SyncHandler) publish(w http.ResponseWriter, r *http.Request) {
	var body PublishRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.publishUC.Execute(r.Context(), req)
	h.logStage("publish", err)
	WriteSuccess(w, stageStatus(err), newStageResponse(res, err, toUploadResponse))
}

// marketUpdate
//
//	@Summary		Обновление цен или остатков на маркетплейсе
//	@Description	kind=price отправляет итоговую цену товара, kind=stock его остаток (0 для снятого с продажи)
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		MarketUpdateRequest						true	"Карточки для обновления"
//	@Success		200		{object}	StageResponse[MarketUpdateResponse]		"Все карточки обновлены"
//	@Success		207		{object}	StageResponse[MarketUpdateResponse]		"Часть карточек не обновлена"
//	@Failure		400		{object}	ErrorResponse							"Ошибка валидации"
//	@Failure		500		{object}	StageResponse[MarketUpdateResponse]		"Запуск не удался"
//	@Router			/sync/market-updates [post]
func (h *SyncHandler) marketUpdate(w http.ResponseWriter, r *http.Request) {
	var body MarketUpdateRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.updateUC.Execute(r.Context(), req)
	h.logStage("market update", err)
	WriteSuccess(w, stageStatus(err), newStageResponse(res, err, toMarketUpdateResponse))
}

// collectOrders
//
//	@Summary		Передача заказов поставщику
//	@Description	Создаёт заказы у поставщика по заказам внешней площадки
//	@Tags			sync
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CollectOrdersRequest			true	"Внешние заказы"
//	@Success		200		{object}	StageResponse[OrderResponse]	"Все заказы переданы"
//	@Success		207		{object}	StageResponse[OrderResponse]	"Часть заказов не передана"
//	@Failure		400		{object}	ErrorResponse					"Ошибка валидации"
//	@Failure		500		{object}	StageResponse[OrderResponse]	"Запуск не удался"
//	@Router			/sync/orders [post]
func (h *SyncHandler) collectOrders(w http.ResponseWriter, r *http.Request) {
	var body CollectOrdersRequest
	if err := decodeJSON(w, r, &body); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	req, err := body.toUseCase()
	if err != nil {
		WriteError(w, err)
		return
	}

	res, err := h.ordersUC.Execute(r.Context(), req)
	h.logStage("orders", err)
	WriteSuccess(w, stageStatus(err), newStageResponse(res, err, toOrderResponse))
}

func (h *SyncHandler) logStage(stage string, err error) {
	switch {
	case err == nil:
	case e.IsPartial(err):
		h.logger.Warnf("%s stage finished partially: %s", stage, err.Error())
	default:
		h.logger.Errorf(err, "%s stage failed", stage)
	}
}

func toCategoryResponse(c domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:       c.ID,
		Name:     c.Name,
		ParentID: c.ParentID,
		Level:    c.Level,
	}
}
