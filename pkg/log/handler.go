package log

import (
	"context"
	"fmt"
	"log/slog"

	cerrors "github.com/cockroachdb/errors"

	"github.com/YuminosukeSato/tabprep/pkg/errors"
)

// ErrFmtHandler is a slog handler for records that carry an "error"
// attribute. It adds the cockroachdb/errors stack trace, the error type and,
// for column-level failures, the offending column name.
type ErrFmtHandler struct {
	handler slog.Handler
}

// WrapByErrFmtHandler wraps handler with ErrFmtHandler.
func WrapByErrFmtHandler(handler slog.Handler) slog.Handler {
	return &ErrFmtHandler{handler: handler}
}

func (eh *ErrFmtHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return eh.handler.Enabled(ctx, l)
}

func (eh *ErrFmtHandler) Handle(ctx context.Context, r slog.Record) error {
	var err error
	r.Attrs(func(attr slog.Attr) bool {
		if attr.Key != ErrAttrKey {
			return true
		}
		err, _ = attr.Value.Any().(error)
		return false
	})
	if err == nil {
		return eh.handler.Handle(ctx, r)
	}

	if st := extractStacktrace(err); st != "" {
		r.AddAttrs(slog.String(StacktraceAttrKey, st))
	}
	if typ := errorType(err); typ != "" {
		r.AddAttrs(slog.String(ErrorTypeKey, typ))
	}
	if col := errorColumn(err); col != "" {
		r.AddAttrs(slog.String(ColumnKey, col))
	}
	return eh.handler.Handle(ctx, r)
}

func (eh *ErrFmtHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithAttrs(attrs)}
}

func (eh *ErrFmtHandler) WithGroup(g string) slog.Handler {
	return &ErrFmtHandler{handler: eh.handler.WithGroup(g)}
}

func extractStacktrace(err error) string {
	safeDetails := cerrors.GetSafeDetails(err).SafeDetails
	if len(safeDetails) > 0 {
		return safeDetails[0]
	}
	return ""
}

// errorType names the innermost structured error, e.g. "*errors.SchemaError".
func errorType(err error) string {
	var (
		se *errors.SchemaError
		ee *errors.EmptyColumnError
		nf *errors.NotFittedError
		ve *errors.ValidationError
	)
	switch {
	case errors.As(err, &se):
		return fmt.Sprintf("%T", se)
	case errors.As(err, &ee):
		return fmt.Sprintf("%T", ee)
	case errors.As(err, &nf):
		return fmt.Sprintf("%T", nf)
	case errors.As(err, &ve):
		return fmt.Sprintf("%T", ve)
	}
	return ""
}

func errorColumn(err error) string {
	var se *errors.SchemaError
	if errors.As(err, &se) {
		return se.Column
	}
	var ee *errors.EmptyColumnError
	if errors.As(err, &ee) {
		return ee.Column
	}
	return ""
}
