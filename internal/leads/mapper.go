package leads

import (
	"github.com/JakeFAU/seo-reporter/internal/payload"
	"github.com/JakeFAU/seo-reporter/internal/reporter"
)

// DefaultBusinessName is used when a record carries no business name.
const DefaultBusinessName = "Unknown Business"

type fieldSpec struct {
	aliases []string
	assign  func(lead *reporter.Lead, value string)
}

// fieldTable lists, per lead field, the record keys tried in order.
var fieldTable = []fieldSpec{
	{aliases: []string{"Business Name", "businessName"}, assign: func(l *reporter.Lead, v string) { l.BusinessName = v }},
	{aliases: []string{"Category Name", "categoryName"}, assign: func(l *reporter.Lead, v string) { l.CategoryName = &v }},
	{aliases: []string{"Address", "address"}, assign: func(l *reporter.Lead, v string) { l.Address = &v }},
	{aliases: []string{"Website", "website"}, assign: func(l *reporter.Lead, v string) { l.Website = &v }},
	{aliases: []string{"Phone", "phone"}, assign: func(l *reporter.Lead, v string) { l.Phone = &v }},
	{aliases: []string{"Email", "email"}, assign: func(l *reporter.Lead, v string) { l.Email = &v }},
}

// MapLead builds a lead from one normalized record. Fields the record does not
// supply stay nil; the business name falls back to DefaultBusinessName.
func MapLead(record payload.Value, id, sessionID string) reporter.Lead {
	lead := reporter.Lead{
		ID:           id,
		SessionID:    sessionID,
		BusinessName: DefaultBusinessName,
	}
	for _, field := range fieldTable {
		if value, ok := firstPresent(record, field.aliases...); ok {
			field.assign(&lead, value)
		}
	}
	return lead
}

// firstPresent returns the text of the first truthy value among keys.
func firstPresent(record payload.Value, keys ...string) (string, bool) {
	for _, key := range keys {
		if v, ok := record.Get(key); ok && v.Truthy() {
			return v.Text(), true
		}
	}
	return "", false
}
