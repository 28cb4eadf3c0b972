package domain

import "github.com/shopspring/decimal"

// TransactionKind identifies what produced a ledger entry.
type TransactionKind string

const (
	TxSent          TransactionKind = "SENT"
	TxReceived      TransactionKind = "RECEIVED"
	TxCouponRedeem  TransactionKind = "COUPON_REDEEM"
	TxAdBonus       TransactionKind = "AD_BONUS"
	TxDailyReward   TransactionKind = "DAILY_REWARD"
	TxBotClaim      TransactionKind = "BOT_CLAIM"
	TxReferralBonus TransactionKind = "REFERRAL_BONUS"
	TxCallFee       TransactionKind = "CALL_FEE"
)

// Transaction is an immutable ledger record. A transfer appends a SENT copy
// to the sender and a RECEIVED copy, sharing the same ID, to the receiver.
type Transaction struct {
	ID          string          `json:"id"`
	Kind        TransactionKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Timestamp   int64           `json:"timestamp"`
	SenderID    string          `json:"sender_id,omitempty"`
	ReceiverID  string          `json:"receiver_id,omitempty"`
}
