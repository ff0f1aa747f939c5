package notification

import (
	"fmt"
	"html"
	"strings"

	"github.com/frahmantamala/tradedesk/internal/core/events"
)

const siteName = "TradeDesk"

func esc(s string) string {
	return html.EscapeString(s)
}

func layout(title string, paragraphs ...string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><body style=\"font-family:sans-serif;max-width:600px;margin:0 auto\">")
	fmt.Fprintf(&b, "<h2>%s</h2>", esc(title))
	for _, p := range paragraphs {
		fmt.Fprintf(&b, "<p>%s</p>", p)
	}
	fmt.Fprintf(&b, "<p style=\"color:#888\">%s</p></body></html>", siteName)
	return b.String()
}

func field(label, value string) string {
	if value == "" {
		value = "-"
	}
	return fmt.Sprintf("<strong>%s:</strong> %s", esc(label), esc(value))
}

func greeting(name string) string {
	if name == "" {
		return "Hi,"
	}
	return fmt.Sprintf("Hi %s,", esc(name))
}

func contactMessages(e *events.ContactReceivedEvent, admin string) []Message {
	return []Message{
		{
			To:      admin,
			Subject: fmt.Sprintf("New contact message: %s", e.Subject),
			HTML: layout("New contact message",
				field("Name", e.Name), field("Email", e.Email), field("Phone", e.Phone),
				field("Subject", e.Subject), esc(e.Message)),
		},
		{
			To:      e.Email,
			Subject: "We received your message",
			HTML: layout("Thanks for reaching out",
				greeting(e.Name),
				"We received your message and will get back to you within two business days."),
		},
	}
}

func bookingMessages(e *events.ServiceBookingCreatedEvent, admin string) []Message {
	date := ""
	if e.PreferredDate != nil {
		date = e.PreferredDate.Format("2 Jan 2006")
	}
	next := "We will contact you shortly to schedule your session."
	if e.Paid {
		next = "Your booking will be confirmed as soon as your payment completes."
	}
	return []Message{
		{
			To:      admin,
			Subject: fmt.Sprintf("New booking: %s", e.ServiceTitle),
			HTML: layout("New service booking",
				field("Service", e.ServiceTitle), field("Name", e.Name), field("Email", e.Email),
				field("Phone", e.Phone), field("Preferred date", date), esc(e.Message)),
		},
		{
			To:      e.Email,
			Subject: fmt.Sprintf("Your booking for %s", e.ServiceTitle),
			HTML: layout("Booking received",
				greeting(e.Name),
				fmt.Sprintf("Thanks for booking <strong>%s</strong>.", esc(e.ServiceTitle)),
				next),
		},
	}
}

func applicationMessages(e *events.WorkshopApplicationCreatedEvent, admin string) []Message {
	var status string
	switch {
	case e.Paid:
		status = "Your seat will be confirmed as soon as your payment completes."
	case e.Status == "approved":
		status = "Your seat is confirmed. We will send the joining details before the workshop."
	case e.Status == "waitlist":
		status = "The workshop is full right now, so you are on the waitlist. We will let you know if a seat opens up."
	default:
		status = "We will review your application and get back to you."
	}
	return []Message{
		{
			To:      admin,
			Subject: fmt.Sprintf("New workshop application: %s", e.WorkshopTitle),
			HTML: layout("New workshop application",
				field("Workshop", e.WorkshopTitle), field("Name", e.Name), field("Email", e.Email),
				field("Phone", e.Phone), field("Experience", e.ExperienceLevel), field("Status", e.Status)),
		},
		{
			To:      e.Email,
			Subject: fmt.Sprintf("Your application for %s", e.WorkshopTitle),
			HTML:    layout("Application received", greeting(e.Name), status),
		},
	}
}

func outcomeLine(e *events.PaymentCompletedEvent) string {
	switch e.Outcome {
	case "enrolled", "already_enrolled":
		return "You now have access to the course."
	case "approved":
		return "Your workshop seat is confirmed."
	case "waitlist":
		return "The workshop filled up before your payment completed. You are on the waitlist and we will contact you about a refund or the next batch."
	case "confirmed":
		return "Your session is confirmed. We will reach out to schedule it."
	default:
		return "Thank you for your purchase."
	}
}

func paymentCompletedMessages(e *events.PaymentCompletedEvent, admin string) []Message {
	amount := fmt.Sprintf("%d %s", e.Amount, e.Currency)
	return []Message{
		{
			To:      admin,
			Subject: fmt.Sprintf("Payment received: %s (%s)", e.ItemTitle, amount),
			HTML: layout("Payment received",
				field("Item", e.ItemTitle), field("Type", e.PaymentType), field("Amount", amount),
				field("Customer", e.CustomerName), field("Email", e.CustomerEmail),
				field("Receipt", e.Receipt), field("Gateway payment", e.GatewayPaymentID), field("Outcome", e.Outcome)),
		},
		{
			To:      e.CustomerEmail,
			Subject: fmt.Sprintf("Payment receipt %s", e.Receipt),
			HTML: layout("Payment successful",
				greeting(e.CustomerName),
				fmt.Sprintf("We received your payment of <strong>%s</strong> for <strong>%s</strong>.", esc(amount), esc(e.ItemTitle)),
				outcomeLine(e),
				field("Receipt", e.Receipt)),
		},
	}
}

func paymentFailedMessages(e *events.PaymentFailedEvent) []Message {
	return []Message{{
		To:      e.CustomerEmail,
		Subject: "Your payment did not go through",
		HTML: layout("Payment not completed",
			"We could not complete your payment and you have not been charged for this order.",
			field("Receipt", e.Receipt),
			"You can start a new checkout at any time."),
	}}
}

func newsletterMessages(e *events.NewsletterSubscribedEvent, siteURL string) []Message {
	base := strings.TrimRight(siteURL, "/")
	confirm := fmt.Sprintf("%s/api/v1/newsletter/confirm/%s", base, e.Token)
	unsubscribe := fmt.Sprintf("%s/api/v1/newsletter/unsubscribe/%s", base, e.Token)
	return []Message{{
		To:      e.Email,
		Subject: "Confirm your newsletter subscription",
		HTML: layout("One more step",
			greeting(e.Name),
			fmt.Sprintf("Please <a href=\"%s\">confirm your subscription</a> to start receiving market notes.", esc(confirm)),
			fmt.Sprintf("Not you? <a href=\"%s\">Unsubscribe</a>.", esc(unsubscribe))),
	}}
}
