// Пакет ctxmeta — нейтральный слой для метаданных запроса, прокидываемых
// через context.Context (request_id, идентичность фермера, trace_id).
// HTTP-слой и логгер зависят от небольшого общего пакета, но не друг от друга.
package ctxmeta

import "context"

type ctxKey string

const (
	// Ключи контекста (собственный тип — чтобы избежать коллизий).
	KeyRequestID ctxKey = "request_id"
	KeyFarmerID  ctxKey = "farmer_id"
)

// WithRequestID кладёт request_id в контекст (если пусто — ничего не делает).
func WithRequestID(ctx context.Context, requestID string) context.Context {
	if ctx == nil || requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// RequestIDFromContext достаёт request_id из контекста.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyRequestID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithFarmerID кладёт идентификатор фермера в контекст.
func WithFarmerID(ctx context.Context, farmerID string) context.Context {
	if ctx == nil || farmerID == "" {
		return ctx
	}
	return context.WithValue(ctx, KeyFarmerID, farmerID)
}

// FarmerIDFromContext достаёт идентификатор фермера из контекста.
func FarmerIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	if v, ok := ctx.Value(KeyFarmerID).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
