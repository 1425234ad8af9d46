package models

import "time"

// User is a storefront customer. UID is issued by the external auth provider.
type User struct {
	UID       string    `db:"uid" json:"uid"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type NotificationType string

const (
	NotificationNewProducts NotificationType = "new_products"
	NotificationOrderStatus NotificationType = "order_status"
)

// Notification is an in-app message shown to one user.
type Notification struct {
	ID            string           `db:"id" json:"id"`
	UserID        string           `db:"user_id" json:"userId"`
	Type          NotificationType `db:"type" json:"type"`
	Title         string           `db:"title" json:"title"`
	Message       string           `db:"message" json:"message"`
	Link          string           `db:"link" json:"link,omitempty"`
	IsRead        bool             `db:"is_read" json:"isRead"`
	SourceEventID *string          `db:"source_event_id" json:"-"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
}
