// Package outreach composes the agency outreach email for a lead and hands it
// to the email webhook for delivery.
package outreach

import (
	"fmt"
	"strings"
)

// DefaultSignature signs emails from agencies without a display name.
const DefaultSignature = "The SEO Reporter Team"

// Email is the composed message.
type Email struct {
	Subject string
	Body    string
}

const bodyTemplate = `
Hi there,

I was recently looking into local businesses in your area and came across %[1]s.

While you have a great business, I noticed that potential customers might be having trouble finding you online. It appears that some of your website's SEO settings are currently "invisible" to search engines like Google, which means people searching for your services may not be seeing your site.

I've taken the liberty of generating a detailed SEO Audit Report for %[2]s to show you exactly where the gaps are.

Updating these settings could significantly help more customers find and reach your website. 

Please find the attached SEO report for your review. If you'd like me to help you fix these issues and get more customers through your door, simply respond to this email with the word "SEO" and I'll be happy to assist you.

Best regards,

%[3]s
`

// Compose renders the outreach email. The body is signed with senderName, or
// DefaultSignature when it is empty.
func Compose(businessName, websiteURL, senderName string) Email {
	signature := senderName
	if signature == "" {
		signature = DefaultSignature
	}
	return Email{
		Subject: fmt.Sprintf("Important: Your website visibility and SEO audit for %s", businessName),
		Body:    strings.TrimSpace(fmt.Sprintf(bodyTemplate, businessName, websiteURL, signature)),
	}
}
