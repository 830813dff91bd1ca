package domain

import "time"

// Villa is a rentable property in the inventory.
type Villa struct {
	ID        int       `json:"id" bson:"id"`
	Name      string    `json:"name" bson:"name"`
	Details   string    `json:"details" bson:"details"`
	Rate      float64   `json:"rate" bson:"rate"`
	Sqft      int       `json:"sqft" bson:"sqft"`
	Occupancy int       `json:"occupancy" bson:"occupancy"`
	ImageURL  string    `json:"image_url" bson:"image_url"`
	Amenity   string    `json:"amenity" bson:"amenity"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
