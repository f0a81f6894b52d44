package httpapi

import (
	"context"
	"net/http"

	"github.com/riskibarqy/score-predictor/internal/usecase"
)

func (h *Handler) RunSyncFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncFixtures")
	defer span.End()

	h.runSync(ctx, w, r, h.syncService.SyncFixtures)
}

func (h *Handler) RunSyncScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncScores")
	defer span.End()

	h.runSync(ctx, w, r, h.syncService.SyncScores)
}

func (h *Handler) runSync(
	ctx context.Context,
	w http.ResponseWriter,
	r *http.Request,
	run func(ctx context.Context, apiURL string) (usecase.SyncSummary, error),
) {
	var req syncRequest
	if err := h.decodeBody(ctx, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := run(ctx, req.APIURL)
	if err != nil {
		h.logger.WarnContext(ctx, "fixture sync job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) RunRefreshLeaderboards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRefreshLeaderboards")
	defer span.End()

	summary, err := h.leaderboardService.RefreshAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "refresh leaderboards job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, summary)
}
