package grpc

import (
	"context"
	"time"

	"github.com/DRSN-tech/dropship-sync/internal/domain"
	"github.com/DRSN-tech/dropship-sync/internal/usecase"
	"github.com/DRSN-tech/dropship-sync/pkg/e"
	"github.com/DRSN-tech/dropship-sync/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	historyServiceName = "dropshipsync.v1.SyncHistoryService"
	maxListLimit       = 500
)

// HistoryServiceServer — чтение журнала синхронизации по gRPC.
// Сообщения описаны стандартными типами protobuf, сгенерированного кода нет.
type HistoryServiceServer interface {
	GetHistory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error)
	ListHistory(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error)
}

var historyServiceDesc = grpc.ServiceDesc{
	ServiceName: historyServiceName,
	HandlerType: (*HistoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetHistory", Handler: getHistoryHandler},
		{MethodName: "ListHistory", Handler: listHistoryHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dropshipsync/v1/history.proto",
}

func getHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HistoryServiceServer).GetHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + historyServiceName + "/GetHistory"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HistoryServiceServer).GetHistory(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func listHistoryHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(HistoryServiceServer).ListHistory(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + historyServiceName + "/ListHistory"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(HistoryServiceServer).ListHistory(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

type HistoryService struct {
	historyUC usecase.SyncHistoryUC
	logger    logger.Logger
}

func NewHistoryService(historyUC usecase.SyncHistoryUC, logger logger.Logger) *HistoryService {
	return &HistoryService{historyUC: historyUC, logger: logger}
}

func (g *HistoryService) GetHistory(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	const op = "grpc.GetHistory"

	h, err := g.historyUC.Get(ctx, req.GetValue())
	if err != nil {
		g.logger.Warnf("%s: %v", op, err)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res, err := toStruct(toHistoryRecord(h))
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	return res, nil
}

// ListHistory принимает фильтр вида {"item_id", "supplier_id", "sync_type", "limit"}.
func (g *HistoryService) ListHistory(ctx context.Context, req *structpb.Struct) (*structpb.ListValue, error) {
	const op = "grpc.ListHistory"

	filter, err := toFilter(req)
	if err != nil {
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	records, err := g.historyUC.List(ctx, filter)
	if err != nil {
		g.logger.Errorf(e.Wrap(op, err), "%s", op)
		return nil, GRPCErrorResponse(e.Wrap(op, err))
	}

	res := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(records))}
	for _, h := range records {
		s, err := toStruct(toHistoryRecord(h))
		if err != nil {
			return nil, GRPCErrorResponse(e.Wrap(op, err))
		}
		res.Values = append(res.Values, structpb.NewStructValue(s))
	}

	return res, nil
}

func toFilter(req *structpb.Struct) (usecase.SyncHistoryFilter, error) {
	var filter usecase.SyncHistoryFilter
	fields := req.GetFields()

	if v := fields["item_id"].GetStringValue(); v != "" {
		filter.ItemID = &v
	}
	if v := fields["supplier_id"].GetStringValue(); v != "" {
		filter.SupplierID = &v
	}
	if v := fields["sync_type"].GetStringValue(); v != "" {
		st := domain.SyncType(v)
		filter.SyncType = &st
	}
	if v, ok := fields["limit"]; ok {
		limit := int(v.GetNumberValue())
		if limit <= 0 || limit > maxListLimit {
			return filter, e.Wrap("invalid limit", e.ErrStatusBadRequest)
		}
		filter.Limit = limit
	}

	return filter, nil
}

type historyRecord struct {
	ID              string            `json:"id"`
	SyncType        string            `json:"sync_type"`
	Status          string            `json:"status"`
	ItemID          *string           `json:"item_id,omitempty"`
	SupplierID      *string           `json:"supplier_id,omitempty"`
	MarketType      *string           `json:"market_type,omitempty"`
	SuccessCount    int               `json:"success_count"`
	FailureCount    int               `json:"failure_count"`
	TotalCount      int               `json:"total_count"`
	Errors          map[string]string `json:"errors,omitempty"`
	Details         map[string]any    `json:"details,omitempty"`
	ErrorMessage    *string           `json:"error_message,omitempty"`
	StartedAt       *time.Time        `json:"started_at,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	DurationSeconds *float64          `json:"duration_seconds,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

func toHistoryRecord(h *domain.SyncHistory) historyRecord {
	rec := historyRecord{
		ID:              h.ID,
		SyncType:        string(h.SyncType),
		Status:          string(h.Status),
		ItemID:          h.ItemID,
		SupplierID:      h.SupplierID,
		MarketType:      h.MarketType,
		Details:         h.Details,
		ErrorMessage:    h.ErrorMessage,
		StartedAt:       h.StartedAt,
		CompletedAt:     h.CompletedAt,
		DurationSeconds: h.DurationSeconds,
		CreatedAt:       h.CreatedAt,
	}
	if h.Result != nil {
		rec.SuccessCount = h.Result.SuccessCount
		rec.FailureCount = h.Result.FailureCount
		rec.TotalCount = h.Result.TotalCount
		rec.Errors = h.Result.Errors
	}

	return rec
}
