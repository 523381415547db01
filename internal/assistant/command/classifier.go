package command

import "strings"

// rule is one classification entry: an intent tag, its fixed confidence
// weight, and a disjunction of phrase tests (including transliterated Hindi
// variants for the same concept).
type rule struct {
	intent     IntentType
	confidence int
	phrases    []string
}

// intentRules is evaluated strictly in order with first-match-wins
// semantics. Creation intents come before the report/analytics intents so
// that e.g. "create lead" beats any report phrase in the same message; the
// sequence within each group is the tie-break policy and must not be
// reordered.
var intentRules = []rule{
	{IntentCreateLead, 75, []string{
		"create lead", "new lead", "add lead", "lead for", "lead banao", "naya lead",
	}},
	{IntentCreateQuotation, 75, []string{
		"create quotation", "new quotation", "make quotation", "quotation for", "quotation banao",
	}},
	{IntentCreateCustomer, 75, []string{
		"create customer", "new customer", "add customer", "customer banao", "naya customer",
	}},
	{IntentCreateInvoice, 75, []string{
		"create invoice", "make invoice", "invoice for", "generate invoice", "invoice banao", "bill banao",
	}},
	{IntentTodaysCollection, 85, []string{
		"today's collection", "todays collection", "collection today", "aaj ka collection", "aaj ki vasooli",
	}},
	{IntentPendingInvoices, 85, []string{
		"pending invoice", "unpaid invoice", "pending bill", "payment pending", "baaki bill",
	}},
	{IntentOverdueInvoices, 85, []string{
		"overdue",
	}},
	{IntentTotalOutstanding, 85, []string{
		"total outstanding", "outstanding amount", "outstanding balance", "kitna baaki", "total baaki",
	}},
	{IntentTopDebtors, 80, []string{
		"top debtor", "debtor", "who owes", "udhar lena",
	}},
	{IntentTopCreditors, 80, []string{
		"top creditor", "creditor", "udhar dena",
	}},
	{IntentTopCustomers, 80, []string{
		"top customer", "best customer", "top client",
	}},
	{IntentSalesSummary, 80, []string{
		"sales summary", "sales report", "total sales", "monthly sales", "kitni bikri",
	}},
	{IntentLeadStatus, 80, []string{
		"lead status", "my leads", "show leads", "leads summary",
	}},
	{IntentQuotationStatus, 80, []string{
		"quotation status", "my quotations", "pending quotation",
	}},
	{IntentConversionRate, 75, []string{
		"conversion rate", "conversion",
	}},
}

// Classify evaluates the ordered rule list against lower-cased trimmed text
// and returns the first matching intent with its fixed weight. No match
// yields IntentUnknown with confidence 0.
func Classify(text string) (IntentType, int) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for _, r := range intentRules {
		for _, phrase := range r.phrases {
			if strings.Contains(normalized, phrase) {
				return r.intent, r.confidence
			}
		}
	}

	return IntentUnknown, 0
}
