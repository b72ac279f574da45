package dto

// RegisterRequest is the citizen signup payload.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the credential login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GeoPointRequest is an optional coordinate pair on complaint creation.
type GeoPointRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateComplaintRequest files a new complaint. Ward may be picked
// explicitly or derived from the location.
type CreateComplaintRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CategoryID  string           `json:"category_id"`
	Urgency     string           `json:"urgency"`
	WardID      *string          `json:"ward_id,omitempty"`
	Location    *GeoPointRequest `json:"location,omitempty"`
	Address     *string          `json:"address,omitempty"`
	Anonymous   bool             `json:"anonymous"`
}

// UpdateStatusRequest moves a complaint to a new status with optional
// remarks.
type UpdateStatusRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

// EditComplaintRequest updates complaint details.
type EditComplaintRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Urgency     string `json:"urgency"`
}

// CreateOfficerRequest provisions an officer account.
type CreateOfficerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	WardID      string `json:"ward_id"`
	Designation string `json:"designation,omitempty"`
}

// AssignComplaintRequest hands a complaint to an officer.
type AssignComplaintRequest struct {
	OfficerID string `json:"officer_id"`
}

// CreateSuggestionRequest files a citizen suggestion.
type CreateSuggestionRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	WardID      *string `json:"ward_id,omitempty"`
}

// RespondSuggestionRequest records an admin response.
type RespondSuggestionRequest struct {
	Response string `json:"response"`
}
