package catalog

type CreateRoomRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity" binding:"required,gt=0"`
}

type CreateOrganizationRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

type CreateCompensationRequest struct {
	Name       string  `json:"name" binding:"required"`
	HourlyRate float64 `json:"hourly_rate" binding:"gte=0"`
}
