// Package httpapi exposes the rewards engine over HTTP.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sqboom/rewards-engine/internal/account"
	"github.com/sqboom/rewards-engine/internal/autopilot"
	"github.com/sqboom/rewards-engine/internal/broadcast"
	"github.com/sqboom/rewards-engine/internal/cooldown"
	"github.com/sqboom/rewards-engine/internal/health"
	"github.com/sqboom/rewards-engine/internal/ledger"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/rewards"
	"github.com/sqboom/rewards-engine/internal/stats"
	"github.com/sqboom/rewards-engine/pkg/logger"
)

// Server bundles the services behind the HTTP API.
type Server struct {
	ledger      *ledger.Service
	progression *progression.Engine
	cooldowns   *cooldown.Scheduler
	rewards     *rewards.Service
	autopilot   *autopilot.Service
	broadcast   *broadcast.Service
	accounts    *account.Service
	sampler     *stats.Sampler
	checker     *health.Checker
	log         *slog.Logger
}

// Deps lists the services the API depends on.
type Deps struct {
	Ledger      *ledger.Service
	Progression *progression.Engine
	Cooldowns   *cooldown.Scheduler
	Rewards     *rewards.Service
	Autopilot   *autopilot.Service
	Broadcast   *broadcast.Service
	Accounts    *account.Service
	Sampler     *stats.Sampler
	Checker     *health.Checker
	Log         *slog.Logger
}

// NewServer constructs the API server.
func NewServer(deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		ledger:      deps.Ledger,
		progression: deps.Progression,
		cooldowns:   deps.Cooldowns,
		rewards:     deps.Rewards,
		autopilot:   deps.Autopilot,
		broadcast:   deps.Broadcast,
		accounts:    deps.Accounts,
		sampler:     deps.Sampler,
		checker:     deps.Checker,
		log:         log,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()

	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(mux.MiddlewareFunc(logger.Middleware))
	api.Use(loggingMiddleware(s.log))

	api.HandleFunc("/accounts", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}", s.handleGetAccount).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}/password", s.handleChangePassword).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/ban", s.handleSetBanned).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/approve-level", s.handleApproveLevelUp).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)

	api.HandleFunc("/accounts/{id}/credit", s.handleCredit).Methods(http.MethodPost)
	api.HandleFunc("/transfers", s.handleTransfer).Methods(http.MethodPost)
	api.HandleFunc("/call-fee", s.handleCallFee).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleVerifyTransaction).Methods(http.MethodGet)

	api.HandleFunc("/accounts/{id}/tap", s.handleTap).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/progress", s.handleProgress).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}/evaluate-level", s.handleEvaluateLevelUp).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/cooldowns/{kind}", s.handleCooldown).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id}/claims/daily", s.handleClaimDaily).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/claims/ad-bonus", s.handleClaimAdBonus).Methods(http.MethodPost)

	api.HandleFunc("/accounts/{id}/bot/tier", s.handleSelectTier).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/bot/start", s.handleStartBotSession).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id}/bot/claim", s.handleClaimBotEarnings).Methods(http.MethodPost)

	api.HandleFunc("/messages", s.handleListMessages).Methods(http.MethodGet)
	api.HandleFunc("/messages", s.handlePublish).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/redeem", s.handleRedeemCoupon).Methods(http.MethodPost)
	api.HandleFunc("/messages/{id}/vote", s.handleVotePoll).Methods(http.MethodPost)
	api.HandleFunc("/ads/{id}/vote", s.handleVoteAdPoll).Methods(http.MethodPost)

	api.HandleFunc("/settings", s.handleGetSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handleUpdateSettings).Methods(http.MethodPut)

	api.HandleFunc("/stats/liquidity", s.handleLiquidityStats).Methods(http.MethodGet)
	api.HandleFunc("/stats/platform", s.handlePlatformStats).Methods(http.MethodGet)

	return router
}
