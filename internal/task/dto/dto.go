package dto

import "github.com/fekuna/omnipos-fulfillment-service/internal/model"

type TaskFilters struct {
	Status string
}

// ProductionResult is returned by every operation that moves made quantity.
type ProductionResult struct {
	Task           *model.Task        `json:"task"`
	Delta          int                `json:"delta"`
	Allocations    []model.Allocation `json:"allocations"`
	NewlyFulfilled []string           `json:"newly_fulfilled"`
	Unallocated    int                `json:"unallocated"`
}
