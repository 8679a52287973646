package checkout

// SubmitRequest is the checkout form as the storefront posts it.
type SubmitRequest struct {
	Name          string  `json:"name" validate:"required,min=2,max=120"`
	Phone         string  `json:"phone" validate:"required"`
	District      string  `json:"district" validate:"required"`
	Address       string  `json:"address" validate:"required,min=5,max=500"`
	Notes         *string `json:"notes" validate:"omitempty,max=1000"`
	PaymentMethod string  `json:"paymentMethod" validate:"omitempty,oneof=cash_on_delivery"`
}
