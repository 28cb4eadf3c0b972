package domain

import "github.com/shopspring/decimal"

// MessageType tags the broadcast-message variants.
type MessageType string

const (
	MessageText   MessageType = "TEXT"
	MessageCoupon MessageType = "COUPON"
	MessagePoll   MessageType = "POLL"
)

// CouponData carries the redeemable payload of a COUPON message.
type CouponData struct {
	Code      string          `json:"code"`
	Reward    decimal.Decimal `json:"reward"`
	ExpiresAt int64           `json:"expires_at"`
}

// PollData carries the question and running vote counter of a POLL message.
type PollData struct {
	Question string `json:"question"`
	Votes    int    `json:"votes"`
}

// ChannelMessage is a tagged-union chat message. Exactly one of Coupon or
// Poll is set, matching Type; TEXT messages carry neither. Messages are
// immutable once published except for the poll vote counter.
type ChannelMessage struct {
	ID         string      `json:"id"`
	Type       MessageType `json:"type"`
	SenderID   string      `json:"sender_id"`
	ReceiverID string      `json:"receiver_id"`
	Timestamp  int64       `json:"timestamp"`
	Text       string      `json:"text,omitempty"`
	ImageURL   string      `json:"image_url,omitempty"`

	Coupon *CouponData `json:"coupon,omitempty"`
	Poll   *PollData   `json:"poll,omitempty"`
}

// Clone returns a deep copy of the message.
func (m *ChannelMessage) Clone() *ChannelMessage {
	if m == nil {
		return nil
	}

	clone := *m
	if m.Coupon != nil {
		coupon := *m.Coupon
		clone.Coupon = &coupon
	}
	if m.Poll != nil {
		poll := *m.Poll
		clone.Poll = &poll
	}

	return &clone
}

// AdType tags the platform ad-content variants.
type AdType string

const (
	AdImage AdType = "image"
	AdVideo AdType = "video"
	AdPoll  AdType = "poll"
)

// AdContent is the tagged-union advertisement shown by the platform.
// MediaURL applies to image and video ads, Link only to image ads, and
// Question/Votes only to poll ads.
type AdContent struct {
	ID       string `json:"id"`
	Type     AdType `json:"type"`
	Text     string `json:"text"`
	MediaURL string `json:"media_url,omitempty"`
	Link     string `json:"link,omitempty"`
	Question string `json:"question,omitempty"`
	Votes    int    `json:"votes,omitempty"`
}

// PlatformSettings holds platform-wide mutable settings published by admins.
type PlatformSettings struct {
	ETBRate   float64    `json:"etb_rate"`
	AdContent *AdContent `json:"ad_content,omitempty"`
}
