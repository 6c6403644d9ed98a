package dto

import "github.com/fekuna/omnipos-fulfillment-service/internal/model"

type OrderFilters struct {
	Status          string
	IncludeArchived bool
	Page            int
	PageSize        int
}

// ArchiveResult reports the order after an archive or unarchive call. The
// flags mark a no-op.
type ArchiveResult struct {
	Order           *model.Order `json:"order"`
	AlreadyArchived bool         `json:"already_archived,omitempty"`
	NotArchived     bool         `json:"not_archived,omitempty"`
}
