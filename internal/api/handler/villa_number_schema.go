package handler

// --- Villa number request types ---

type villaNumberCreateRequest struct {
	Number         int    `json:"number" validate:"required,gt=0"`
	VillaID        int    `json:"villa_id" validate:"required,gt=0"`
	SpecialDetails string `json:"special_details"`
}

type villaNumberUpdateRequest struct {
	Number         int    `json:"number" validate:"required,gt=0"`
	VillaID        int    `json:"villa_id" validate:"required,gt=0"`
	SpecialDetails string `json:"special_details"`
}

// villaNumberPatchRequest is a field-level patch; the number itself is the
// key and cannot be patched.
type villaNumberPatchRequest struct {
	VillaID        *int    `json:"villa_id,omitempty"`
	SpecialDetails *string `json:"special_details,omitempty"`
}
