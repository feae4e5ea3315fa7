package wsrouter

import "context"

type ctxKey string

const (
	messageTypeKey ctxKey = "message_type"
)

func GetMessageTypeFromCtx(ctx context.Context) string {
	if t, ok := ctx.Value(messageTypeKey).(string); ok {
		return t
	}
	return ""
}
