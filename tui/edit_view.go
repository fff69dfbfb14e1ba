package tui

import (
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/insuretrack/models"
)

// formFields maps input positions to policy JSON field names for inline errors.
var formFields = []struct {
	Key         string
	Placeholder string
	CharLimit   int
}{
	{"policyNumber", "Policy Number", 30},
	{"policyholderName", "Policyholder Name", 100},
	{"dateOfBirth", "Date of Birth (YYYY-MM-DD)", 10},
	{"policyRenewalDate", "Renewal Date (YYYY-MM-DD)", 10},
	{"renewalFrequency", "Renewal Frequency (monthly/yearly)", 7},
	{"mobileNumber", "Mobile Number (10 digits)", 15},
	{"policyPremiumAmount", "Premium Amount (₹)", 15},
	{"insuranceCategory", "Category (life/term/car/bike/medical)", 7},
}

func (m Model) renderEditView() string {
	var s strings.Builder

	// Title
	if m.selectedID == "" {
		s.WriteString(titleStyle.Render("NEW POLICY"))
	} else {
		s.WriteString(titleStyle.Render("EDIT POLICY"))
	}
	s.WriteString("\n\n")

	// Form fields
	for i, input := range m.formInputs {
		if i == m.focusIndex {
			s.WriteString("> ")
		} else {
			s.WriteString("  ")
		}
		s.WriteString(input.View())
		s.WriteString("\n")
		if msg, ok := m.formErrors[formFields[i].Key]; ok {
			s.WriteString("    " + errorStyle.Render(msg) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	s.WriteString("\n")

	// Help
	s.WriteString(m.renderEditHelp())

	return s.String()
}

func (m Model) renderEditHelp() string {
	help := []string{
		"Tab/↓: Next field",
		"Shift+Tab/↑: Previous field",
		"Enter: Save",
		"Esc: Cancel",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleEditKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.formErrors = nil
		m.err = nil
		if m.selectedID == "" {
			m.viewMode = ViewList
		} else {
			m.viewMode = ViewDetail
		}
		return m, nil
	case "tab", "down":
		m.focusIndex = (m.focusIndex + 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusIndex = (m.focusIndex + len(m.formInputs) - 1) % len(m.formInputs)
		m.updateFormFocus()
		return m, nil
	case "enter":
		// Save the policy
		if m.savePolicy() {
			m.formErrors = nil
			m.err = nil
			if m.selectedID == "" {
				m.viewMode = ViewList
			} else {
				m.viewMode = ViewDetail
			}
		}
		return m, nil
	}

	// Update current input
	var cmd tea.Cmd
	m.formInputs[m.focusIndex], cmd = m.formInputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m *Model) initFormInputs() {
	inputs := make([]textinput.Model, len(formFields))
	for i, f := range formFields {
		inputs[i] = textinput.New()
		inputs[i].Placeholder = f.Placeholder
		inputs[i].CharLimit = f.CharLimit
	}

	// If editing, populate fields
	if p, ok := m.store.Get(m.selectedID); ok && m.selectedID != "" {
		inputs[0].SetValue(p.PolicyNumber)
		inputs[1].SetValue(p.PolicyholderName)
		inputs[2].SetValue(p.DateOfBirth)
		inputs[3].SetValue(p.PolicyRenewalDate)
		inputs[4].SetValue(string(p.RenewalFrequency.OrDefault()))
		inputs[5].SetValue(p.MobileNumber)
		inputs[6].SetValue(strconv.FormatFloat(p.PolicyPremiumAmount, 'f', -1, 64))
		inputs[7].SetValue(string(p.InsuranceCategory))
	} else {
		inputs[0].SetValue(m.store.NextPolicyNumber())
		inputs[4].SetValue(string(models.FrequencyYearly))
	}

	m.formInputs = inputs
	m.formErrors = nil
	m.err = nil
	m.focusIndex = 0
	m.updateFormFocus()
}

func (m *Model) updateFormFocus() {
	for i := range m.formInputs {
		if i == m.focusIndex {
			m.formInputs[i].Focus()
		} else {
			m.formInputs[i].Blur()
		}
	}
}

// formInput reads the form. Fields that cannot be parsed are reported in the returned map.
func (m Model) formInput() (models.PolicyInput, map[string]string) {
	errs := make(map[string]string)
	value := func(i int) string { return strings.TrimSpace(m.formInputs[i].Value()) }

	in := models.PolicyInput{
		PolicyNumber:      value(0),
		PolicyholderName:  value(1),
		DateOfBirth:       value(2),
		PolicyRenewalDate: value(3),
		MobileNumber:      value(5),
	}

	freq, err := models.ParseFrequency(value(4))
	if err != nil {
		errs["renewalFrequency"] = "Renewal frequency must be monthly or yearly"
	}
	in.RenewalFrequency = freq

	if raw := value(6); raw != "" {
		premium, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
		if err != nil {
			errs["policyPremiumAmount"] = "Premium amount must be a number"
		}
		in.PolicyPremiumAmount = premium
	}

	category, err := models.ParseCategory(value(7))
	if err != nil {
		errs["insuranceCategory"] = "Please select a valid insurance category"
	}
	in.InsuranceCategory = category

	return in, errs
}

// savePolicy adds or updates the policy and reports whether it was stored.
func (m *Model) savePolicy() bool {
	in, errs := m.formInput()
	if len(errs) > 0 {
		m.formErrors = errs
		return false
	}

	var err error
	if m.selectedID == "" {
		var p models.Policy
		p, err = m.store.Add(in)
		if err == nil {
			m.statusMessage = "Policy " + p.PolicyNumber + " added"
		}
	} else {
		_, err = m.store.Update(m.selectedID, models.PolicyPatch{
			PolicyNumber:        &in.PolicyNumber,
			PolicyholderName:    &in.PolicyholderName,
			DateOfBirth:         &in.DateOfBirth,
			PolicyRenewalDate:   &in.PolicyRenewalDate,
			RenewalFrequency:    &in.RenewalFrequency,
			MobileNumber:        &in.MobileNumber,
			PolicyPremiumAmount: &in.PolicyPremiumAmount,
			InsuranceCategory:   &in.InsuranceCategory,
		})
		if err == nil {
			m.statusMessage = "Policy " + in.PolicyNumber + " updated"
		}
	}

	var verr *models.ValidationError
	switch {
	case err == nil:
		return true
	case errors.As(err, &verr):
		m.formErrors = verr.Fields
	default:
		m.formErrors = nil
		m.err = err
	}
	return false
}
