package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantIntent     IntentType
		wantConfidence int
	}{
		{
			name:           "create lead with entity tail",
			text:           "create lead for Acme Corp",
			wantIntent:     IntentCreateLead,
			wantConfidence: 75,
		},
		{
			name:           "create quotation",
			text:           "make quotation for Stellar Traders",
			wantIntent:     IntentCreateQuotation,
			wantConfidence: 75,
		},
		{
			name:           "create customer",
			text:           "add customer named Rajesh Kumar",
			wantIntent:     IntentCreateCustomer,
			wantConfidence: 75,
		},
		{
			name:           "invoice for routes to creation not reports",
			text:           "send invoice for ₹15,000",
			wantIntent:     IntentCreateInvoice,
			wantConfidence: 75,
		},
		{
			name:           "todays collection",
			text:           "what is today's collection",
			wantIntent:     IntentTodaysCollection,
			wantConfidence: 85,
		},
		{
			name:           "pending invoices",
			text:           "show me pending invoices",
			wantIntent:     IntentPendingInvoices,
			wantConfidence: 85,
		},
		{
			name:           "overdue invoices",
			text:           "any overdue payments this week",
			wantIntent:     IntentOverdueInvoices,
			wantConfidence: 85,
		},
		{
			name:           "total outstanding",
			text:           "total outstanding across all customers",
			wantIntent:     IntentTotalOutstanding,
			wantConfidence: 85,
		},
		{
			name:           "top debtors with explicit limit",
			text:           "show top 10 debtors",
			wantIntent:     IntentTopDebtors,
			wantConfidence: 80,
		},
		{
			name:           "top creditors",
			text:           "list my top creditors",
			wantIntent:     IntentTopCreditors,
			wantConfidence: 80,
		},
		{
			name:           "top customers",
			text:           "who are my best customers",
			wantIntent:     IntentTopCustomers,
			wantConfidence: 80,
		},
		{
			name:           "sales summary",
			text:           "give me the sales report for this month",
			wantIntent:     IntentSalesSummary,
			wantConfidence: 80,
		},
		{
			name:           "lead status",
			text:           "what is the lead status",
			wantIntent:     IntentLeadStatus,
			wantConfidence: 80,
		},
		{
			name:           "quotation status",
			text:           "any update on my quotations",
			wantIntent:     IntentQuotationStatus,
			wantConfidence: 80,
		},
		{
			name:           "conversion rate",
			text:           "how is my conversion rate",
			wantIntent:     IntentConversionRate,
			wantConfidence: 75,
		},
		{
			name:           "hindi create lead",
			text:           "ek lead banao",
			wantIntent:     IntentCreateLead,
			wantConfidence: 75,
		},
		{
			name:           "hindi todays collection",
			text:           "aaj ka collection batao",
			wantIntent:     IntentTodaysCollection,
			wantConfidence: 85,
		},
		{
			name:           "hindi total outstanding",
			text:           "kitna baaki hai",
			wantIntent:     IntentTotalOutstanding,
			wantConfidence: 85,
		},
		{
			name:           "case insensitive",
			text:           "CREATE LEAD for Acme",
			wantIntent:     IntentCreateLead,
			wantConfidence: 75,
		},
		{
			name:           "no rule matches",
			text:           "call 9876543210 now",
			wantIntent:     IntentUnknown,
			wantConfidence: 0,
		},
		{
			name:           "empty input",
			text:           "",
			wantIntent:     IntentUnknown,
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intent, confidence := Classify(tt.text)
			assert.Equal(t, tt.wantIntent, intent)
			assert.Equal(t, tt.wantConfidence, confidence)
		})
	}
}

func TestClassifyCreationWinsOverReports(t *testing.T) {
	// Both a creation phrase and a report phrase present: the creation rule
	// sits earlier in the list and must win.
	intent, confidence := Classify("create lead from my top debtor list")
	assert.Equal(t, IntentCreateLead, intent)
	assert.Equal(t, 75, confidence)
}

func TestClassifyStableAcrossCalls(t *testing.T) {
	for i := 0; i < 10; i++ {
		intent, confidence := Classify("show top 10 debtors")
		assert.Equal(t, IntentTopDebtors, intent)
		assert.Equal(t, 80, confidence)
	}
}
