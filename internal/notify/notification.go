package notify

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type classifies a notification for the inbox UI.
type Type string

const (
	TypeInfo    Type = "info"
	TypeWarning Type = "warning"
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeMessage Type = "message"
	TypeAlert   Type = "alert"
)

// Priority orders notifications within the inbox.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Notification is one entry in a user's inbox.
//
// State machine: Unread -> Read -> Clicked. Clicking always implies read, so
// clicking an unread notification transitions to Read+Clicked in one step.
// ReadAt is set exactly once (the first read or click); ClickedAt tracks the
// most recent click while ClickCount accumulates. There is no transition back
// to unread.
type Notification struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	Type        Type       `json:"type"`
	Priority    Priority   `json:"priority"`
	IsRead      bool       `json:"is_read"`
	IsClicked   bool       `json:"is_clicked"`
	ClickCount  int        `json:"click_count"`
	MessageURL  string     `json:"message_url,omitempty"`
	RelatedID   *uuid.UUID `json:"related_id,omitempty"`
	RelatedType string     `json:"related_type,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ReadAt      *time.Time `json:"read_at,omitempty"`
	ClickedAt   *time.Time `json:"clicked_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ErrNotFound is returned when an operation targets an unknown notification.
var ErrNotFound = errors.New("notification not found")

// ValidationError reports a missing or invalid field on create.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("notification: missing or invalid %s", e.Field)
}

var validTypes = map[Type]bool{
	TypeInfo:    true,
	TypeWarning: true,
	TypeSuccess: true,
	TypeError:   true,
	TypeMessage: true,
	TypeAlert:   true,
}

var validPriorities = map[Priority]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
	PriorityUrgent: true,
}

// Validate checks the fields a producer must supply. Priority defaults to
// medium when empty.
func (n *Notification) Validate() error {
	if n.UserID == uuid.Nil {
		return &ValidationError{Field: "user_id"}
	}
	if n.Title == "" {
		return &ValidationError{Field: "title"}
	}
	if n.Message == "" {
		return &ValidationError{Field: "message"}
	}
	if !validTypes[n.Type] {
		return &ValidationError{Field: "type"}
	}
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	if !validPriorities[n.Priority] {
		return &ValidationError{Field: "priority"}
	}
	return nil
}

// Producer helpers. Any subsystem (ingestion, proposal flow, insight
// generation) builds its messages through these so the related-entity wiring
// stays consistent.

// NewOpportunityAlert announces a newly discovered opportunity to a user.
func NewOpportunityAlert(userID, opportunityID uuid.UUID, title string) Notification {
	return Notification{
		UserID:      userID,
		Title:       "New funding opportunity",
		Message:     fmt.Sprintf("A new opportunity matching your profile was found: %s", title),
		Type:        TypeInfo,
		Priority:    PriorityMedium,
		MessageURL:  fmt.Sprintf("/opportunities/%s", opportunityID),
		RelatedID:   &opportunityID,
		RelatedType: "opportunity",
	}
}

// NewProposalUpdate notifies a user about progress on one of their proposals.
func NewProposalUpdate(userID, proposalID uuid.UUID, status string) Notification {
	return Notification{
		UserID:      userID,
		Title:       "Proposal update",
		Message:     fmt.Sprintf("Your proposal status changed to %s", status),
		Type:        TypeSuccess,
		Priority:    PriorityHigh,
		MessageURL:  fmt.Sprintf("/proposals/%s", proposalID),
		RelatedID:   &proposalID,
		RelatedType: "proposal",
	}
}

// NewSystemNotice sends an untargeted informational message to a user.
func NewSystemNotice(userID uuid.UUID, title, message string) Notification {
	return Notification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Type:     TypeMessage,
		Priority: PriorityLow,
	}
}
