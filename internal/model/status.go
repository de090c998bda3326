package model

// ContractStatus is the derived business status. Unlike the record
// vocabularies this one is closed: the derivation can only produce the
// five values below.
type ContractStatus string

const (
	StatusNotStarted              ContractStatus = "NOT_STARTED"
	StatusInProduction            ContractStatus = "IN_PRODUCTION"
	StatusAcceptedAwaitingPayment ContractStatus = "ACCEPTED_AWAITING_PAYMENT"
	StatusPaidWithOpenIssues      ContractStatus = "PAID_WITH_OPEN_ISSUES"
	StatusComplete                ContractStatus = "COMPLETE"
)

// StatusTier is the display severity attached to a derived status.
type StatusTier string

const (
	TierNeutral  StatusTier = "neutral"
	TierInfo     StatusTier = "info"
	TierWarning  StatusTier = "warning"
	TierCritical StatusTier = "critical"
	TierSuccess  StatusTier = "success"
)
