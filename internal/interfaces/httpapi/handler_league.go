package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/score-predictor/internal/usecase"
)

func (h *Handler) CreateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req createLeagueRequest
	if err := h.decodeBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	created, err := h.leagueService.Create(ctx, usecase.CreateLeagueInput{
		UserID:      principal.UserID,
		Name:        req.Name,
		DisplayName: req.DisplayName,
		IsOpen:      req.IsOpen,
		Scope:       req.LeaderboardScope,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create league failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, leagueToDTO(created, true))
}

func (h *Handler) ListMyLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyLeagues")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.leagueService.ListMine(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list my leagues failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]myLeagueDTO, 0, len(items))
	for _, item := range items {
		out = append(out, myLeagueToDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ListOpenLeagues(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListOpenLeagues")
	defer span.End()

	items, err := h.leagueService.ListOpen(ctx, strings.TrimSpace(r.URL.Query().Get("q")))
	if err != nil {
		h.logger.WarnContext(ctx, "list open leagues failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]leagueDTO, 0, len(items))
	for _, item := range items {
		out = append(out, leagueToDTO(item, false))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) JoinLeagueByCode(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinLeagueByCode")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinByCodeRequest
	if err := h.decodeBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	membership, err := h.leagueService.JoinByCode(ctx, usecase.JoinLeagueByCodeInput{
		UserID:      principal.UserID,
		InviteCode:  req.InviteCode,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join league by code failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, membershipToDTO(membership))
}

func (h *Handler) JoinOpenLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.JoinOpenLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req joinOpenRequest
	if err := h.decodeBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	membership, err := h.leagueService.JoinOpen(ctx, usecase.JoinOpenLeagueInput{
		UserID:      principal.UserID,
		LeagueID:    leagueID,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "join open league failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, membershipToDTO(membership))
}

func (h *Handler) UpdateLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateLeague")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req updateLeagueRequest
	if err := h.decodeBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	updated, err := h.leagueService.Update(ctx, usecase.UpdateLeagueInput{
		UserID:   principal.UserID,
		LeagueID: leagueID,
		Name:     req.Name,
		IsOpen:   req.IsOpen,
		Scope:    req.LeaderboardScope,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "update league failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leagueToDTO(updated, true))
}

func (h *Handler) SetMemberBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SetMemberBackfill")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req backfillRequest
	if err := h.decodeBody(ctx, r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	membership, err := h.leagueService.SetMemberBackfill(ctx, usecase.SetMemberBackfillInput{
		ActorID:  principal.UserID,
		LeagueID: leagueID,
		UserID:   strings.TrimSpace(r.PathValue("userID")),
		Wins:     req.Wins,
		Draws:    req.Draws,
		Losses:   req.Losses,
		Points:   req.Points,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "set member backfill failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, membershipToDTO(membership))
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	view, err := h.leaderboardService.LeaderboardFor(ctx, principal.UserID, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed", "user_id", principal.UserID, "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, leaderboardToDTO(view))
}
