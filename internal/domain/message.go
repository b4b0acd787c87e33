package domain

import "time"

// Message is a platform conversation message attached to a customer.
type Message struct {
	ID                string    `json:"id"`
	CustomerID        string    `json:"customerId"`
	Content           string    `json:"content"`
	Platform          Platform  `json:"platform"`
	PlatformMessageID string    `json:"platformMessageId"`
	SentAt            time.Time `json:"sentAt"`
	CreatedAt         time.Time `json:"createdAt"`
}
