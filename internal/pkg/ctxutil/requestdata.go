package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the caller identity supplied by the identity collaborator.
// It is trusted as given.
type RequestData struct {
	UserID string
	Role   string
}

func (rd *RequestData) IsTeacher() bool {
	return rd != nil && rd.Role == "teacher"
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
