package domain

import "time"

// VillaNumber is a bookable unit (room number) belonging to a villa.
// Number is chosen by the caller, not sequence-assigned.
type VillaNumber struct {
	Number         int       `json:"number" bson:"number"`
	VillaID        int       `json:"villa_id" bson:"villa_id"`
	SpecialDetails string    `json:"special_details" bson:"special_details"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}
