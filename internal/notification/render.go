package notification

import (
	"fmt"
	"strings"

	"mediremind-backend/internal/model"
)

// HighRiskDisclaimer is attached to every push and stream payload for a
// HIGH priority medication.
const HighRiskDisclaimer = "This is an important medication. If you've missed this dose, " +
	"please consult your healthcare provider before adjusting your schedule."

const defaultInstructions = "Take as directed"

// InstructionsOrDefault returns the medication's instructions with the
// standard fallback when none are set.
func InstructionsOrDefault(med model.Medication) string {
	if strings.TrimSpace(med.Instructions) == "" {
		return defaultInstructions
	}
	return med.Instructions
}

// PlaceholderInstructions reports whether the instructions carry no real
// information and should be suppressed from the friendly message.
func PlaceholderInstructions(instructions string) bool {
	switch strings.ToLower(strings.TrimSpace(instructions)) {
	case "", "test", strings.ToLower(defaultInstructions):
		return true
	}
	return false
}

// FriendlyMessage renders the one-line user-facing reminder sentence.
func FriendlyMessage(med model.Medication) string {
	msg := fmt.Sprintf("It's time for your %s (%s)", med.Name, med.Dosage)
	if !PlaceholderInstructions(med.Instructions) {
		msg += fmt.Sprintf(" — %s", med.Instructions)
	}
	return msg
}

// Disclaimer returns the compliance disclaimer for a medication, or empty
// for normal priority.
func Disclaimer(med model.Medication) string {
	if med.HighRisk() {
		return HighRiskDisclaimer
	}
	return ""
}

// ReminderPush builds the push payload for a due reminder.
func ReminderPush(med model.Medication) PushPayload {
	return PushPayload{
		Title:      fmt.Sprintf("\U0001F48A %s", med.Name),
		Body:       fmt.Sprintf("Time to take %s - %s", med.Dosage, InstructionsOrDefault(med)),
		Tag:        fmt.Sprintf("med-%d", med.ID),
		URL:        "/medications",
		Disclaimer: Disclaimer(med),
	}
}

// ReminderEmailSubject builds the subject line for a reminder email.
func ReminderEmailSubject(med model.Medication) string {
	return fmt.Sprintf("Medication Reminder: %s", med.Name)
}

// ReminderEmailBody builds the HTML body for a reminder email.
func ReminderEmailBody(med model.Medication) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #2563eb;">&#9200; Time to take your medication</h2>`)
	b.WriteString(`<div style="background: #f3f4f6; padding: 20px; border-radius: 8px;">`)
	fmt.Fprintf(&b, `<p style="font-size: 18px; margin: 0;"><strong>%s</strong> (%s)</p>`, med.Name, med.Dosage)
	fmt.Fprintf(&b, `<p style="color: #6b7280; margin-top: 10px;">%s</p>`, InstructionsOrDefault(med))
	if med.HighRisk() {
		fmt.Fprintf(&b, `<p style="color: #b91c1c; margin-top: 10px;">%s</p>`, HighRiskDisclaimer)
	}
	b.WriteString(`</div>`)
	b.WriteString(`<p style="color: #9ca3af; font-size: 12px; margin-top: 20px;">This is an automated reminder from MediRemind.</p>`)
	b.WriteString(`</div>`)
	return b.String()
}
