package command

// IntentType is one of a fixed closed set of 15 intent tags, or IntentUnknown.
type IntentType string

// Creation intents. These are the only candidates for the quick-action path.
const (
	IntentCreateLead      IntentType = "create_lead"
	IntentCreateQuotation IntentType = "create_quotation"
	IntentCreateCustomer  IntentType = "create_customer"
	IntentCreateInvoice   IntentType = "create_invoice"
)

// Report/analytics intents. Always answered via the conversational path so
// the backend can synthesize a real answer instead of templated text.
const (
	IntentTodaysCollection IntentType = "todays_collection"
	IntentPendingInvoices  IntentType = "pending_invoices"
	IntentOverdueInvoices  IntentType = "overdue_invoices"
	IntentTotalOutstanding IntentType = "total_outstanding"
	IntentTopDebtors       IntentType = "top_debtors"
	IntentTopCreditors     IntentType = "top_creditors"
	IntentTopCustomers     IntentType = "top_customers"
	IntentSalesSummary     IntentType = "sales_summary"
	IntentLeadStatus       IntentType = "lead_status"
	IntentQuotationStatus  IntentType = "quotation_status"
	IntentConversionRate   IntentType = "conversion_rate"
)

// IntentUnknown is the terminal value when no classifier rule matched.
// It always carries confidence 0.
const IntentUnknown IntentType = "unknown"

// DefaultLimit is applied whenever no explicit "top N" phrase is present,
// regardless of intent.
const DefaultLimit = 5

// EntityBag holds structured fields pulled out of unstructured text. All
// fields are independently optional except Limit, which defaults to
// DefaultLimit. CompanyName and CustomerName are never populated by the
// extractor; they exist for callers that supply pre-resolved entities.
type EntityBag struct {
	Name         string  `json:"name,omitempty"`
	CompanyName  string  `json:"companyName,omitempty"`
	CustomerName string  `json:"customerName,omitempty"`
	Phone        string  `json:"phone,omitempty"`
	Email        string  `json:"email,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
	Date         string  `json:"date,omitempty"`
	Description  string  `json:"description,omitempty"`
	Limit        int     `json:"limit"`
}

// ParsedCommand is the immutable result of parsing one message. It is a pure
// function of the input text: same text, same command.
type ParsedCommand struct {
	Type       IntentType `json:"type"`
	Confidence int        `json:"confidence"` // fixed rule weight, 0-100
	Entities   EntityBag  `json:"entities"`
	RawText    string     `json:"rawText"`
}

// Humanize renders an intent tag as a human-readable phrase for user-facing
// messages ("create_lead" -> "create lead").
func (t IntentType) Humanize() string {
	out := make([]byte, len(t))
	for i := 0; i < len(t); i++ {
		if t[i] == '_' {
			out[i] = ' '
		} else {
			out[i] = t[i]
		}
	}
	return string(out)
}
