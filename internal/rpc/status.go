package rpc

import (
	"context"
	"errors"

	"github.com/fekuna/omnipos-fulfillment-service/internal/apperror"
	"github.com/fekuna/omnipos-fulfillment-service/internal/i18n"
	"github.com/fekuna/omnipos-fulfillment-service/internal/logger"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// ErrorMapper turns use case errors into gRPC statuses with messages in the
// caller's language.
type ErrorMapper struct {
	tr     *i18n.Translator
	logger logger.ZapLogger
}

func NewErrorMapper(tr *i18n.Translator, log logger.ZapLogger) *ErrorMapper {
	return &ErrorMapper{tr: tr, logger: log}
}

func (m *ErrorMapper) Status(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	kind := apperror.KindOf(err)
	code := Code(kind)
	langs := acceptLanguage(ctx)

	if code == codes.Internal {
		m.logger.Error("internal error", zap.Error(err))
		return status.Error(code, m.localize("Internal", nil, "internal error", langs))
	}

	var ae *apperror.Error
	if errors.As(err, &ae) {
		return status.Error(code, m.localize(ae.MessageID, ae.Data, ae.Msg, langs))
	}
	return status.Error(code, err.Error())
}

func (m *ErrorMapper) localize(id string, data map[string]any, fallback string, langs []string) string {
	if m.tr == nil {
		return fallback
	}
	return m.tr.Localize(id, data, fallback, langs...)
}

func Code(kind apperror.Kind) codes.Code {
	switch kind {
	case apperror.KindNotFound:
		return codes.NotFound
	case apperror.KindInvalidQuantity, apperror.KindInvalidArgument:
		return codes.InvalidArgument
	case apperror.KindExceedsCapacity:
		return codes.FailedPrecondition
	case apperror.KindConstraintViolation:
		return codes.AlreadyExists
	case apperror.KindBusy:
		return codes.Unavailable
	default:
		return codes.Internal
	}
}

func acceptLanguage(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}
	return md.Get("accept-language")
}

// SyncFailed reports a failed sync as Unavailable unless the error carries a
// more specific kind.
func (m *ErrorMapper) SyncFailed(ctx context.Context, err error) error {
	if apperror.KindOf(err) != apperror.KindInternal {
		return m.Status(ctx, err)
	}
	m.logger.Warn("sync failed", zap.Error(err))
	msg := m.localize("SyncFailed", map[string]any{"Reason": err.Error()}, "sync failed: "+err.Error(), acceptLanguage(ctx))
	return status.Error(codes.Unavailable, msg)
}
