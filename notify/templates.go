// ABOUTME: SMS message templates and phone number formatting
// ABOUTME: Fixed copy for welcome, birthday and renewal reminder messages
package notify

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/harperreed/insuretrack/dates"
	"github.com/harperreed/insuretrack/models"
)

// FallbackMessage is sent for an unknown message type.
const FallbackMessage = "Insurance notification from InsureTrack"

// Render fills the template for msgType with fields of p. daysLeft is only used by reminders.
func Render(msgType models.MessageType, p models.Policy, daysLeft int) string {
	switch msgType {
	case models.MessagePolicyAdded:
		return fmt.Sprintf("🎉 Welcome to InsureTrack! Your %s insurance policy (%s) has been successfully added. Premium: ₹%s. Renewal date: %s. Thank you for choosing us!",
			p.InsuranceCategory.Label(), p.PolicyNumber, formatPremium(p.PolicyPremiumAmount), displayDate(p.PolicyRenewalDate))
	case models.MessageBirthday:
		return fmt.Sprintf("🎂 Happy Birthday %s! 🎉 Wishing you a wonderful year ahead. Don't forget to review your insurance policies and ensure they meet your current needs. Have a great day! - InsureTrack Team",
			p.PolicyholderName)
	case models.MessageRenewalReminder:
		return fmt.Sprintf("⚠️ RENEWAL REMINDER: Your %s insurance policy (%s) expires in %s on %s. Premium: ₹%s. Please renew to avoid coverage gaps. - InsureTrack",
			p.InsuranceCategory.Label(), p.PolicyNumber, pluralDays(daysLeft), displayDate(p.PolicyRenewalDate), formatPremium(p.PolicyPremiumAmount))
	default:
		return FallbackMessage
	}
}

// formatPremium adds thousands separators: 12000 -> "12,000".
func formatPremium(amount float64) string {
	return humanize.Commaf(amount)
}

func displayDate(s string) string {
	t, err := dates.Parse(s)
	if err != nil {
		return s
	}
	return dates.FormatDate(t)
}

func pluralDays(n int) string {
	if n > 1 {
		return fmt.Sprintf("%d days", n)
	}
	return fmt.Sprintf("%d day", n)
}

// FormatPhoneNumber converts a stored mobile number to E.164, assuming India (+91).
func FormatPhoneNumber(number string) string {
	digits := models.DigitsOnly(number)
	switch {
	case len(digits) == 10:
		return "+91" + digits
	case len(digits) == 12 && digits[:2] == "91":
		return "+" + digits
	case len(digits) > 10:
		return "+91" + digits[len(digits)-10:]
	}
	return "+91" + digits
}
