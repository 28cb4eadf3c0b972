package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/sqboom/rewards-engine/internal/account"
	"github.com/sqboom/rewards-engine/internal/broadcast"
	"github.com/sqboom/rewards-engine/internal/cooldown"
	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/health"
)

// sanitize strips the stored password before an account leaves the API.
func sanitize(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := a.Clone()
	clone.Password = ""
	return clone
}

func sanitizeAll(accounts []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, len(accounts))
	for i, a := range accounts {
		out[i] = sanitize(a)
	}
	return out
}

type registerRequest struct {
	FullName   string `json:"full_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	ReferrerID string `json:"referrer_id"`
	PhotoURL   string `json:"photo_url"`
	Age        int    `json:"age"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}

	created, err := s.accounts.Register(account.Registration{
		FullName:   req.FullName,
		Phone:      req.Phone,
		Email:      req.Email,
		Password:   req.Password,
		ReferrerID: req.ReferrerID,
		PhotoURL:   req.PhotoURL,
		Age:        req.Age,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sanitize(created))
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrInvalidCredentials)
		return
	}

	logged, err := s.accounts.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(logged))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, sanitizeAll(s.accounts.List()))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	found, err := s.accounts.Get(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(found))
}

type changePasswordRequest struct {
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrInvalidCredentials)
		return
	}

	if err := s.accounts.ChangePassword(mux.Vars(r)["id"], req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type banRequest struct {
	ActorID string `json:"actor_id"`
	Banned  bool   `json:"banned"`
}

func (s *Server) handleSetBanned(w http.ResponseWriter, r *http.Request) {
	var req banRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrNotAuthorized)
		return
	}

	if err := s.accounts.SetBanned(req.ActorID, mux.Vars(r)["id"], req.Banned); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type approveRequest struct {
	ActorID string `json:"actor_id"`
}

func (s *Server) handleApproveLevelUp(w http.ResponseWriter, r *http.Request) {
	var req approveRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrNotAuthorized)
		return
	}

	approved, err := s.accounts.ApproveLevelUp(req.ActorID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(approved))
}

type creditRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Kind        string          `json:"kind"`
	Description string          `json:"description"`
}

func (s *Server) handleCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}

	credited, err := s.ledger.Credit(mux.Vars(r)["id"], req.Amount, domain.TransactionKind(req.Kind), req.Description)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(credited))
}

type transferRequest struct {
	SenderID   string          `json:"sender_id"`
	ReceiverID string          `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}

	tx, err := s.ledger.Transfer(req.SenderID, req.ReceiverID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

type callFeeRequest struct {
	SenderID string `json:"sender_id"`
}

func (s *Server) handleCallFee(w http.ResponseWriter, r *http.Request) {
	var req callFeeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrInvalidAmount)
		return
	}

	tx, err := s.ledger.ProcessCallFee(req.SenderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleVerifyTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.VerifyTransaction(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleTap(w http.ResponseWriter, r *http.Request) {
	tapped, err := s.rewards.Tap(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(tapped))
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := s.progression.Progress(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleEvaluateLevelUp(w http.ResponseWriter, r *http.Request) {
	evaluated, err := s.progression.EvaluateLevelUp(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(evaluated))
}

type cooldownResponse struct {
	Kind        string `json:"kind"`
	RemainingMs int64  `json:"remaining_ms"`
	Available   bool   `json:"available"`
}

func (s *Server) handleCooldown(w http.ResponseWriter, r *http.Request) {
	kind := cooldown.Kind(mux.Vars(r)["kind"])
	if cooldown.Duration(kind) == 0 {
		writeError(w, domain.ErrMessageNotFound)
		return
	}

	remaining, err := s.cooldowns.RemainingFor(mux.Vars(r)["id"], kind)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cooldownResponse{
		Kind:        string(kind),
		RemainingMs: remaining.Milliseconds(),
		Available:   remaining == 0,
	})
}

func (s *Server) handleClaimDaily(w http.ResponseWriter, r *http.Request) {
	claimed, err := s.rewards.ClaimDailyReward(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(claimed))
}

func (s *Server) handleClaimAdBonus(w http.ResponseWriter, r *http.Request) {
	claimed, err := s.rewards.ClaimAdBonus(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(claimed))
}

type selectTierRequest struct {
	Tier int `json:"tier"`
}

func (s *Server) handleSelectTier(w http.ResponseWriter, r *http.Request) {
	var req selectTierRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrTierNotFound)
		return
	}

	selected, err := s.autopilot.SelectTier(mux.Vars(r)["id"], req.Tier)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(selected))
}

func (s *Server) handleStartBotSession(w http.ResponseWriter, r *http.Request) {
	started, err := s.autopilot.StartSession(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(started))
}

func (s *Server) handleClaimBotEarnings(w http.ResponseWriter, r *http.Request) {
	claimed, err := s.autopilot.ClaimEarnings(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sanitize(claimed))
}

func (s *Server) handleListMessages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.broadcast.Messages())
}

type publishRequest struct {
	SenderID   string             `json:"sender_id"`
	ReceiverID string             `json:"receiver_id"`
	Type       domain.MessageType `json:"type"`
	Text       string             `json:"text"`
	ImageURL   string             `json:"image_url"`
	Coupon     *domain.CouponData `json:"coupon"`
	Poll       *domain.PollData   `json:"poll"`
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrMessageNotFound)
		return
	}

	published, err := s.broadcast.Publish(req.SenderID, req.ReceiverID, broadcast.Draft{
		Type:     req.Type,
		Text:     req.Text,
		ImageURL: req.ImageURL,
		Coupon:   req.Coupon,
		Poll:     req.Poll,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, published)
}

type actorRequest struct {
	AccountID string `json:"account_id"`
}

type claimResult struct {
	Account *domain.Account        `json:"account"`
	Message *domain.ChannelMessage `json:"message"`
}

func (s *Server) handleRedeemCoupon(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrAccountNotFound)
		return
	}

	claimer, message, err := s.broadcast.RedeemCoupon(req.AccountID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResult{Account: sanitize(claimer), Message: message})
}

func (s *Server) handleVotePoll(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrAccountNotFound)
		return
	}

	voter, message, err := s.broadcast.VotePoll(req.AccountID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, claimResult{Account: sanitize(voter), Message: message})
}

type adVoteResult struct {
	Account *domain.Account   `json:"account"`
	Ad      *domain.AdContent `json:"ad"`
}

func (s *Server) handleVoteAdPoll(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrAccountNotFound)
		return
	}

	voter, ad, err := s.broadcast.VoteAdPoll(req.AccountID, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, adVoteResult{Account: sanitize(voter), Ad: ad})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.broadcast.Settings())
}

type settingsRequest struct {
	ActorID  string                  `json:"actor_id"`
	Settings domain.PlatformSettings `json:"settings"`
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, domain.ErrNotAuthorized)
		return
	}

	if err := s.broadcast.UpdateSettings(req.ActorID, req.Settings); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s.broadcast.Settings())
}

func (s *Server) handleLiquidityStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sampler.LiquidityHistory())
}

func (s *Server) handlePlatformStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sampler.PlatformHistory())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	results := s.checker.Check(r.Context())

	status := http.StatusOK
	if !health.Healthy(results) {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, results)
}
