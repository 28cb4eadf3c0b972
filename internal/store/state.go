// Package store owns the in-memory state arena and its snapshot
// persistence. The entire account collection, message log, and platform
// settings form one versioned resource: every mutation derives a new state
// from the latest one and replaces it wholesale, so no reader ever observes
// a half-applied operation.
package store

import (
	"strings"

	"github.com/sqboom/rewards-engine/internal/domain"
)

// State is the complete mutable world of the rewards engine.
type State struct {
	Accounts []*domain.Account        `json:"accounts"`
	Messages []*domain.ChannelMessage `json:"messages"`
	Settings domain.PlatformSettings  `json:"settings"`
}

// AccountByID finds an account in place. Returns nil when absent.
func (s *State) AccountByID(id string) *domain.Account {
	for _, account := range s.Accounts {
		if account.ID == id {
			return account
		}
	}
	return nil
}

// AccountByIdentifier resolves an account by id or by case-insensitive
// email, the two login identifiers the platform accepts.
func (s *State) AccountByIdentifier(identifier string) *domain.Account {
	for _, account := range s.Accounts {
		if account.ID == identifier || strings.EqualFold(account.Email, identifier) {
			return account
		}
	}
	return nil
}

// MessageByID finds a broadcast message in place. Returns nil when absent.
func (s *State) MessageByID(id string) *domain.ChannelMessage {
	for _, message := range s.Messages {
		if message.ID == id {
			return message
		}
	}
	return nil
}

// Clone deep-copies the state so a mutation can be computed without
// touching the version concurrent readers hold.
func (s *State) Clone() *State {
	clone := &State{
		Accounts: make([]*domain.Account, 0, len(s.Accounts)),
		Messages: make([]*domain.ChannelMessage, 0, len(s.Messages)),
		Settings: s.Settings,
	}

	for _, account := range s.Accounts {
		clone.Accounts = append(clone.Accounts, account.Clone())
	}
	for _, message := range s.Messages {
		clone.Messages = append(clone.Messages, message.Clone())
	}
	if s.Settings.AdContent != nil {
		ad := *s.Settings.AdContent
		clone.Settings.AdContent = &ad
	}

	return clone
}
