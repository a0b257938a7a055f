package notify

import (
	"context"
	"log/slog"

	"github.com/SscSPs/recon_workbench/internal/core/domain"
	portssvc "github.com/SscSPs/recon_workbench/internal/core/ports/services"
	"github.com/SscSPs/recon_workbench/internal/middleware"
)

// LogNotifier only logs ledger changes. Used when no Redis is configured.
type LogNotifier struct{}

var _ portssvc.LedgerChangeNotifier = LogNotifier{}

func (LogNotifier) NotifyLedgerChanged(ctx context.Context, event domain.LedgerChangeEvent) error {
	middleware.GetLoggerFromCtx(ctx).Info("Ledger changed",
		slog.String("client_id", event.ClientID),
		slog.String("upload_id", event.UploadID),
		slog.String("kind", string(event.Kind)),
		slog.Int("row_count", event.RowCount),
	)
	return nil
}
