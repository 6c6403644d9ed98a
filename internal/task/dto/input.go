package dto

type MarkProducedInput struct {
	VariantID  string `validate:"required"`
	Quantity   int    `validate:"gt=0"`
	OperatorID string
}

type VariantInput struct {
	VariantID  string `validate:"required"`
	OperatorID string
}
