package payload

import (
	"time"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
)

type CreateLibraryItemRequest struct {
	Title           string   `json:"title"           validate:"required,max=200"`
	Description     string   `json:"description"     validate:"max=2000"`
	Content         string   `json:"content"         validate:"required"`
	Category        string   `json:"category"        validate:"max=100"`
	Tags            []string `json:"tags"            validate:"max=20,dive,max=50"`
	PreviewImageKey string   `json:"previewImageKey" validate:"max=300"`
	Published       bool     `json:"published"`
}

type UpdateLibraryItemRequest struct {
	Title           *string   `json:"title"           validate:"omitempty,min=1,max=200"`
	Description     *string   `json:"description"     validate:"omitempty,max=2000"`
	Content         *string   `json:"content"         validate:"omitempty,min=1"`
	Category        *string   `json:"category"        validate:"omitempty,max=100"`
	Tags            *[]string `json:"tags"            validate:"omitempty,max=20,dive,max=50"`
	PreviewImageKey *string   `json:"previewImageKey" validate:"omitempty,max=300"`
	Published       *bool     `json:"published"`
}

type LibraryItemResponse struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Content         string    `json:"content"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	PreviewImageKey string    `json:"previewImageKey,omitempty"`
	Published       bool      `json:"published"`
	LikeCount       int64     `json:"likeCount"`
	UsageCount      int64     `json:"usageCount"`
	CreatedBy       string    `json:"createdBy,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type LibraryItemListResponse struct {
	Items  []LibraryItemResponse `json:"items"`
	Total  int64                 `json:"total"`
	Limit  uint64                `json:"limit"`
	Offset uint64                `json:"offset"`
}

func ToLibraryItemResponse(item *model.LibraryItem) LibraryItemResponse {
	tags := item.Tags
	if tags == nil {
		tags = []string{}
	}

	return LibraryItemResponse{
		ID:              item.ID.Hex(),
		Kind:            string(item.Kind),
		Title:           item.Title,
		Description:     item.Description,
		Content:         item.Content,
		Category:        item.Category,
		Tags:            tags,
		PreviewImageKey: item.PreviewImageKey,
		Published:       item.Published,
		LikeCount:       item.LikeCount,
		UsageCount:      item.UsageCount,
		CreatedBy:       item.CreatedBy,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}
