package command

// EligibleForQuickAction decides whether a parsed command qualifies for the
// deterministic quick-action path. Eligibility is a conjunction: the intent
// must be a creation intent AND its required entity field must be present.
// Report intents are never eligible; analytic questions always go to the
// conversational path.
//
// Lead/customer creation requires companyName, quotation/invoice creation
// requires customerName. The extractor only ever fills the generic name
// field, so commands parsed from free text alone do not pass the gate;
// callers that resolve entities upstream can.
func EligibleForQuickAction(cmd *ParsedCommand) bool {
	switch cmd.Type {
	case IntentCreateLead, IntentCreateCustomer:
		return cmd.Entities.CompanyName != ""
	case IntentCreateQuotation, IntentCreateInvoice:
		return cmd.Entities.CustomerName != ""
	default:
		return false
	}
}
