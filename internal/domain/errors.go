package domain

import "errors"

// Every core operation fails synchronously with one of these terminal
// reasons; no partial mutation survives a failure.
var (
	// ErrInvalidAmount indicates a non-positive amount supplied to a ledger operation.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInsufficientFunds indicates a debit exceeding the available balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrAccountNotFound indicates a referenced account id does not resolve.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidRecipient indicates a self-transfer attempt.
	ErrInvalidRecipient = errors.New("cannot transfer to yourself")
	// ErrAlreadyClaimed indicates a repeated coupon redemption.
	ErrAlreadyClaimed = errors.New("coupon already claimed")
	// ErrAlreadyVoted indicates a repeated poll vote.
	ErrAlreadyVoted = errors.New("already voted")
	// ErrCouponExpired indicates a coupon claimed after its expiry timestamp.
	ErrCouponExpired = errors.New("coupon has expired")
	// ErrMessageNotFound indicates a referenced coupon or poll message does not exist.
	ErrMessageNotFound = errors.New("message not found")
	// ErrTransactionNotFound indicates no ledger holds the referenced transaction id.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrLevelTooLow indicates a bot tier selection below its required level.
	ErrLevelTooLow = errors.New("account level too low for bot tier")
	// ErrTierNotFound indicates an unknown bot tier number.
	ErrTierNotFound = errors.New("bot tier not found")
	// ErrNoActiveTier indicates a session operation without a selected tier.
	ErrNoActiveTier = errors.New("no active bot tier")
	// ErrSessionRunning indicates a session start while one is already running.
	ErrSessionRunning = errors.New("bot session already running")
	// ErrNothingToClaim indicates a bot claim with zero accumulated coins.
	ErrNothingToClaim = errors.New("no bot earnings to claim")
	// ErrCooldownActive indicates a periodic claim attempted before its cooldown expired.
	ErrCooldownActive = errors.New("cooldown still active")
	// ErrTapLimitReached indicates the daily tap limit has been exhausted.
	ErrTapLimitReached = errors.New("daily tap limit reached")
	// ErrNoAdContent indicates an ad bonus claim while no ad is configured.
	ErrNoAdContent = errors.New("no ad content configured")
	// ErrAdVoteRequired indicates an ad bonus claim on a poll ad before voting.
	ErrAdVoteRequired = errors.New("ad poll vote required before claiming")
	// ErrBannedAccount indicates a login attempt on a banned account.
	ErrBannedAccount = errors.New("account is banned")
	// ErrInvalidCredentials indicates a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotAuthorized indicates a privileged operation attempted without the required role.
	ErrNotAuthorized = errors.New("operation not authorized for this role")
	// ErrDuplicateAccount indicates a registration with an email already in use.
	ErrDuplicateAccount = errors.New("account already exists")
)
