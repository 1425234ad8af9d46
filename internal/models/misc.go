package models

import "time"

// PincodeRequest records a customer asking for delivery to an unserved area.
type PincodeRequest struct {
	ID        string    `db:"id" json:"id"`
	Pincode   string    `db:"pincode" json:"pincode"`
	Contact   string    `db:"contact" json:"contact"`
	ProductID *string   `db:"product_id" json:"productId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type NewsletterSubscriber struct {
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
