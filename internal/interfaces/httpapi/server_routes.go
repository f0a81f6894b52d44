package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAuthorizedFixtureRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/fixtures", RequireAuth(verifier, http.HandlerFunc(handler.ListFixtures)))
}

func registerAuthorizedPredictionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/predictions", RequireAuth(verifier, http.HandlerFunc(handler.SubmitPrediction)))
	mux.Handle("GET /v1/predictions/me", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPredictions)))
}

func registerAuthorizedLeagueRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.CreateLeague)))
	mux.Handle("GET /v1/leagues", RequireAuth(verifier, http.HandlerFunc(handler.ListMyLeagues)))
	mux.Handle("GET /v1/leagues/open", RequireAuth(verifier, http.HandlerFunc(handler.ListOpenLeagues)))
	mux.Handle("POST /v1/leagues/join-by-code", RequireAuth(verifier, http.HandlerFunc(handler.JoinLeagueByCode)))
	mux.Handle("POST /v1/leagues/{leagueID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinOpenLeague)))
	mux.Handle("PATCH /v1/leagues/{leagueID}", RequireAuth(verifier, http.HandlerFunc(handler.UpdateLeague)))
	mux.Handle("PUT /v1/leagues/{leagueID}/members/{userID}/backfill", RequireAuth(verifier, http.HandlerFunc(handler.SetMemberBackfill)))
	mux.Handle("GET /v1/leagues/{leagueID}/leaderboard", RequireAuth(verifier, http.HandlerFunc(handler.GetLeaderboard)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/sync/fixtures", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncFixtures)))
	mux.Handle("POST /v1/internal/sync/scores", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncScores)))
	mux.Handle("POST /v1/internal/leaderboards/refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRefreshLeaderboards)))
}
