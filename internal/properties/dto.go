package properties

type CreatePropertyRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	AddressLine1 string  `json:"address_line1" validate:"required,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         string  `json:"city" validate:"required,max=100"`
	PostalCode   string  `json:"postal_code" validate:"required,max=20"`
	Country      string  `json:"country" validate:"required,len=2"`
	Notes        *string `json:"notes,omitempty"`
}

type UpdatePropertyRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country      *string `json:"country,omitempty" validate:"omitempty,len=2"`
	Notes        *string `json:"notes,omitempty"`
}

type CreateUnitRequest struct {
	Label      string  `json:"label" validate:"required,max=50"`
	Bedrooms   int     `json:"bedrooms" validate:"gte=0,lte=20"`
	Bathrooms  int     `json:"bathrooms" validate:"gte=0,lte=20"`
	RentAmount float64 `json:"rent_amount" validate:"gt=0"`
}

type UpdateUnitRequest struct {
	Label      *string  `json:"label,omitempty" validate:"omitempty,max=50"`
	Bedrooms   *int     `json:"bedrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	Bathrooms  *int     `json:"bathrooms,omitempty" validate:"omitempty,gte=0,lte=20"`
	RentAmount *float64 `json:"rent_amount,omitempty" validate:"omitempty,gt=0"`
	Status     *string  `json:"status,omitempty" validate:"omitempty,oneof=VACANT OCCUPIED MAINTENANCE"`
}

type ListPropertiesFilter struct {
	Search  string
	Page    int
	PerPage int
}
