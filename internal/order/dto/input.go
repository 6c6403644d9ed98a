package dto

type OrderInput struct {
	OrderID    string `validate:"required"`
	OperatorID string
}
