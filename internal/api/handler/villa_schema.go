package handler

// --- Villa request types ---

type villaCreateRequest struct {
	Name      string  `json:"name" validate:"required"`
	Details   string  `json:"details"`
	Rate      float64 `json:"rate" validate:"gte=0"`
	Sqft      int     `json:"sqft" validate:"gte=0"`
	Occupancy int     `json:"occupancy" validate:"gte=0"`
	ImageURL  string  `json:"image_url"`
	Amenity   string  `json:"amenity"`
}

type villaUpdateRequest struct {
	ID        int     `json:"id" validate:"required,gt=0"`
	Name      string  `json:"name" validate:"required"`
	Details   string  `json:"details"`
	Rate      float64 `json:"rate" validate:"gte=0"`
	Sqft      int     `json:"sqft" validate:"gte=0"`
	Occupancy int     `json:"occupancy" validate:"gte=0"`
	ImageURL  string  `json:"image_url"`
	Amenity   string  `json:"amenity"`
}

// villaPatchRequest is a field-level patch. Absent fields are nil and keep
// the snapshot's values.
type villaPatchRequest struct {
	Name      *string  `json:"name,omitempty"`
	Details   *string  `json:"details,omitempty"`
	Rate      *float64 `json:"rate,omitempty"`
	Sqft      *int     `json:"sqft,omitempty"`
	Occupancy *int     `json:"occupancy,omitempty"`
	ImageURL  *string  `json:"image_url,omitempty"`
	Amenity   *string  `json:"amenity,omitempty"`
}
