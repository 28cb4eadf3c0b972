// Package broadcast manages channel messages (text, coupons, polls), the
// at-most-once claim and vote registries, and platform-wide settings.
package broadcast

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sqboom/rewards-engine/internal/domain"
	"github.com/sqboom/rewards-engine/internal/ledger"
	"github.com/sqboom/rewards-engine/internal/progression"
	"github.com/sqboom/rewards-engine/internal/store"
	"github.com/sqboom/rewards-engine/pkg/metrics"
)

// Draft is the author-supplied part of a message; ids, sender, and
// timestamps are assigned on publish. Exactly one payload matches Type.
type Draft struct {
	Type     domain.MessageType
	Text     string
	ImageURL string
	Coupon   *domain.CouponData
	Poll     *domain.PollData
}

// Service owns broadcast messages and platform settings.
type Service struct {
	arena       *store.Arena
	progression *progression.Engine
	log         *slog.Logger
	now         func() time.Time
}

// NewService constructs a broadcast Service.
func NewService(arena *store.Arena, progressionEngine *progression.Engine, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{arena: arena, progression: progressionEngine, log: log, now: time.Now}
}

// Publish appends a message to the log. Coupon and poll broadcasts are a
// privileged capability: only agency accounts may publish them. Plain text
// messages are open to everyone.
func (s *Service) Publish(senderID, receiverID string, draft Draft) (*domain.ChannelMessage, error) {
	message := &domain.ChannelMessage{
		ID:         uuid.NewString(),
		Type:       draft.Type,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Timestamp:  s.now().UnixMilli(),
		Text:       draft.Text,
		ImageURL:   draft.ImageURL,
	}

	switch draft.Type {
	case domain.MessageText:
	case domain.MessageCoupon:
		if draft.Coupon == nil {
			return nil, domain.ErrMessageNotFound
		}
		coupon := *draft.Coupon
		message.Coupon = &coupon
	case domain.MessagePoll:
		if draft.Poll == nil {
			return nil, domain.ErrMessageNotFound
		}
		poll := *draft.Poll
		poll.Votes = 0
		message.Poll = &poll
	default:
		return nil, fmt.Errorf("unknown message type %q", draft.Type)
	}

	err := s.arena.Update(func(state *store.State) error {
		sender := state.AccountByID(senderID)
		if sender == nil {
			return domain.ErrAccountNotFound
		}
		if draft.Type != domain.MessageText && sender.Role == domain.RolePlayer {
			return domain.ErrNotAuthorized
		}

		state.Messages = append(state.Messages, message)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return message.Clone(), nil
}

// RedeemCoupon credits the coupon's reward exactly once per account. The
// claim-set membership and the credit commit together, so a repeated call
// always fails AlreadyClaimed and never double-credits.
func (s *Service) RedeemCoupon(accountID, messageID string) (*domain.Account, *domain.ChannelMessage, error) {
	now := s.now()

	var message *domain.ChannelMessage
	err := s.arena.Update(func(state *store.State) error {
		found := state.MessageByID(messageID)
		if found == nil || found.Type != domain.MessageCoupon || found.Coupon == nil {
			return domain.ErrMessageNotFound
		}

		account := state.AccountByID(accountID)
		if account == nil {
			return domain.ErrAccountNotFound
		}

		if account.HasClaimedCoupon(messageID) {
			return domain.ErrAlreadyClaimed
		}
		if now.UnixMilli() > found.Coupon.ExpiresAt {
			return domain.ErrCouponExpired
		}

		description := fmt.Sprintf("Redeemed Coupon %s", found.Coupon.Code)
		if _, err := ledger.CreditAccount(account, found.Coupon.Reward, domain.TxCouponRedeem, description, now.UnixMilli()); err != nil {
			return err
		}
		account.ClaimedCoupons = append(account.ClaimedCoupons, messageID)

		message = found.Clone()
		return nil
	})
	if err != nil {
		metrics.RecordClaim("coupon", "rejected")
		return nil, nil, err
	}

	metrics.RecordClaim("coupon", "ok")
	account, err := s.progression.EvaluateLevelUp(accountID)
	if err != nil {
		return nil, nil, err
	}

	return account, message, nil
}

// VotePoll registers one vote on a channel poll. The vote-set membership
// and the counter increment commit together.
func (s *Service) VotePoll(accountID, messageID string) (*domain.Account, *domain.ChannelMessage, error) {
	var account *domain.Account
	var message *domain.ChannelMessage
	err := s.arena.Update(func(state *store.State) error {
		found := state.MessageByID(messageID)
		if found == nil || found.Type != domain.MessagePoll || found.Poll == nil {
			return domain.ErrMessageNotFound
		}

		voter := state.AccountByID(accountID)
		if voter == nil {
			return domain.ErrAccountNotFound
		}
		if voter.HasVotedPoll(messageID) {
			return domain.ErrAlreadyVoted
		}

		found.Poll.Votes++
		voter.VotedPolls = append(voter.VotedPolls, messageID)

		account = voter.Clone()
		message = found.Clone()
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return account, message, nil
}

// VoteAdPoll registers one vote on the active platform ad poll. Ad-poll
// votes are a pool independent of channel-poll votes.
func (s *Service) VoteAdPoll(accountID, adID string) (*domain.Account, *domain.AdContent, error) {
	var account *domain.Account
	var ad *domain.AdContent
	err := s.arena.Update(func(state *store.State) error {
		current := state.Settings.AdContent
		if current == nil || current.ID != adID || current.Type != domain.AdPoll {
			return domain.ErrMessageNotFound
		}

		voter := state.AccountByID(accountID)
		if voter == nil {
			return domain.ErrAccountNotFound
		}
		if voter.HasVotedAdPoll(adID) {
			return domain.ErrAlreadyVoted
		}

		current.Votes++
		voter.VotedAdPolls = append(voter.VotedAdPolls, adID)

		account = voter.Clone()
		adCopy := *current
		ad = &adCopy
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return account, ad, nil
}

// UpdateSettings replaces the platform settings. Publishing settings is an
// admin capability.
func (s *Service) UpdateSettings(actorID string, settings domain.PlatformSettings) error {
	err := s.arena.Update(func(state *store.State) error {
		actor := state.AccountByID(actorID)
		if actor == nil {
			return domain.ErrAccountNotFound
		}
		if actor.Role != domain.RoleAdmin {
			return domain.ErrNotAuthorized
		}

		state.Settings = settings
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("platform settings updated", slog.String("actor_id", actorID))
	return nil
}

// Messages returns the full broadcast log.
func (s *Service) Messages() []*domain.ChannelMessage {
	return s.arena.Messages()
}

// Settings returns the current platform settings.
func (s *Service) Settings() domain.PlatformSettings {
	return s.arena.Settings()
}
