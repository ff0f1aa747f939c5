package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeContactReceived            = "contact.received"
	EventTypeServiceBookingCreated      = "service.booking.created"
	EventTypeWorkshopApplicationCreated = "workshop.application.created"
	EventTypePaymentCompleted           = "payment.completed"
	EventTypePaymentFailed              = "payment.failed"
	EventTypeNewsletterSubscribed       = "newsletter.subscribed"
)

func newBase(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type ContactReceivedEvent struct {
	BaseEvent
	ContactID int64  `json:"contact_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

func NewContactReceivedEvent(contactID int64, name, email, phone, subject, message string) *ContactReceivedEvent {
	return &ContactReceivedEvent{
		BaseEvent: newBase(EventTypeContactReceived, map[string]interface{}{
			"contact_id": contactID,
			"email":      email,
			"subject":    subject,
		}),
		ContactID: contactID,
		Name:      name,
		Email:     email,
		Phone:     phone,
		Subject:   subject,
		Message:   message,
	}
}

type ServiceBookingCreatedEvent struct {
	BaseEvent
	BookingID     int64      `json:"booking_id"`
	ServiceTitle  string     `json:"service_title"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	Message       string     `json:"message"`
	Paid          bool       `json:"paid"`
}

func NewServiceBookingCreatedEvent(bookingID int64, serviceTitle, name, email, phone string, preferredDate *time.Time, message string, paid bool) *ServiceBookingCreatedEvent {
	return &ServiceBookingCreatedEvent{
		BaseEvent: newBase(EventTypeServiceBookingCreated, map[string]interface{}{
			"booking_id":    bookingID,
			"service_title": serviceTitle,
			"email":         email,
			"paid":          paid,
		}),
		BookingID:     bookingID,
		ServiceTitle:  serviceTitle,
		Name:          name,
		Email:         email,
		Phone:         phone,
		PreferredDate: preferredDate,
		Message:       message,
		Paid:          paid,
	}
}

type WorkshopApplicationCreatedEvent struct {
	BaseEvent
	ApplicationID   int64  `json:"application_id"`
	WorkshopTitle   string `json:"workshop_title"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	ExperienceLevel string `json:"experience_level"`
	Status          string `json:"status"`
	Paid            bool   `json:"paid"`
}

func NewWorkshopApplicationCreatedEvent(applicationID int64, workshopTitle, name, email, phone, experienceLevel, status string, paid bool) *WorkshopApplicationCreatedEvent {
	return &WorkshopApplicationCreatedEvent{
		BaseEvent: newBase(EventTypeWorkshopApplicationCreated, map[string]interface{}{
			"application_id": applicationID,
			"workshop_title": workshopTitle,
			"email":          email,
			"status":         status,
		}),
		ApplicationID:   applicationID,
		WorkshopTitle:   workshopTitle,
		Name:            name,
		Email:           email,
		Phone:           phone,
		ExperienceLevel: experienceLevel,
		Status:          status,
		Paid:            paid,
	}
}

type PaymentCompletedEvent struct {
	BaseEvent
	PaymentID        int64  `json:"payment_id"`
	Receipt          string `json:"receipt"`
	PaymentType      string `json:"payment_type"`
	ItemTitle        string `json:"item_title"`
	Amount           int64  `json:"amount"`
	Currency         string `json:"currency"`
	CustomerName     string `json:"customer_name"`
	CustomerEmail    string `json:"customer_email"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	// Outcome describes the side effect, e.g. "enrolled", "approved", "waitlist", "confirmed".
	Outcome string `json:"outcome"`
}

func NewPaymentCompletedEvent(paymentID int64, receipt, paymentType, itemTitle string, amount int64, currency, customerName, customerEmail, gatewayPaymentID, outcome string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: newBase(EventTypePaymentCompleted, map[string]interface{}{
			"payment_id":         paymentID,
			"receipt":            receipt,
			"payment_type":       paymentType,
			"amount":             amount,
			"currency":           currency,
			"gateway_payment_id": gatewayPaymentID,
			"outcome":            outcome,
		}),
		PaymentID:        paymentID,
		Receipt:          receipt,
		PaymentType:      paymentType,
		ItemTitle:        itemTitle,
		Amount:           amount,
		Currency:         currency,
		CustomerName:     customerName,
		CustomerEmail:    customerEmail,
		GatewayPaymentID: gatewayPaymentID,
		Outcome:          outcome,
	}
}

type PaymentFailedEvent struct {
	BaseEvent
	PaymentID     int64  `json:"payment_id"`
	Receipt       string `json:"receipt"`
	PaymentType   string `json:"payment_type"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	CustomerEmail string `json:"customer_email"`
	FailureReason string `json:"failure_reason"`
}

func NewPaymentFailedEvent(paymentID int64, receipt, paymentType string, amount int64, currency, customerEmail, failureReason string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: newBase(EventTypePaymentFailed, map[string]interface{}{
			"payment_id":     paymentID,
			"receipt":        receipt,
			"payment_type":   paymentType,
			"amount":         amount,
			"failure_reason": failureReason,
		}),
		PaymentID:     paymentID,
		Receipt:       receipt,
		PaymentType:   paymentType,
		Amount:        amount,
		Currency:      currency,
		CustomerEmail: customerEmail,
		FailureReason: failureReason,
	}
}

type NewsletterSubscribedEvent struct {
	BaseEvent
	SubscriberID int64  `json:"subscriber_id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	Token        string `json:"token"`
}

func NewNewsletterSubscribedEvent(subscriberID int64, email, name, token string) *NewsletterSubscribedEvent {
	return &NewsletterSubscribedEvent{
		BaseEvent: newBase(EventTypeNewsletterSubscribed, map[string]interface{}{
			"subscriber_id": subscriberID,
			"email":         email,
		}),
		SubscriberID: subscriberID,
		Email:        email,
		Name:         name,
		Token:        token,
	}
}
