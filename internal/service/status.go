package service

import "github.com/fszn/contracts-service/internal/model"

// DeriveStatus maps a contract's related-record counts to its business
// status and display tier. Ordered rules, first match wins:
//
//  1. nothing recorded at all            -> NOT_STARTED
//  2. no passed acceptance yet           -> IN_PRODUCTION
//  3. passed acceptance, no payment      -> ACCEPTED_AWAITING_PAYMENT
//  4. paid but unresolved feedback open  -> PAID_WITH_OPEN_ISSUES
//  5. paid, nothing open                 -> COMPLETE
//
// The five rules partition the input space; the trailing return is a
// defensive default only and must stay unreachable.
func DeriveStatus(c model.ActivityCounts) (model.ContractStatus, model.StatusTier) {
	hasTasks := c.Tasks > 0
	hasAcceptance := c.Acceptances > 0
	hasPassed := c.PassedAcceptances > 0
	hasPayments := c.Payments > 0
	hasInvoices := c.Invoices > 0
	hasOpenFeedback := c.UnresolvedFeedback > 0

	if !hasTasks && !hasAcceptance && !hasPayments && !hasInvoices {
		return model.StatusNotStarted, model.TierNeutral
	}
	if !hasPassed {
		return model.StatusInProduction, model.TierInfo
	}
	if !hasPayments {
		return model.StatusAcceptedAwaitingPayment, model.TierWarning
	}
	if hasOpenFeedback {
		return model.StatusPaidWithOpenIssues, model.TierCritical
	}
	if !hasOpenFeedback {
		return model.StatusComplete, model.TierSuccess
	}

	return model.StatusInProduction, model.TierInfo
}
