package payload

import (
	"time"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
)

type CreateFormationRequest struct {
	Title         string   `json:"title"         validate:"required,max=200"`
	Slug          string   `json:"slug"          validate:"omitempty,max=200"`
	Description   string   `json:"description"   validate:"max=5000"`
	Category      string   `json:"category"      validate:"max=100"`
	Level         string   `json:"level"         validate:"required,oneof=beginner intermediate advanced"`
	Tags          []string `json:"tags"          validate:"max=20,dive,max=50"`
	CoverImageKey string   `json:"coverImageKey" validate:"max=300"`
	Published     bool     `json:"published"`
}

type UpdateFormationRequest struct {
	Title         *string   `json:"title"         validate:"omitempty,min=1,max=200"`
	Slug          *string   `json:"slug"          validate:"omitempty,min=1,max=200"`
	Description   *string   `json:"description"   validate:"omitempty,max=5000"`
	Category      *string   `json:"category"      validate:"omitempty,max=100"`
	Level         *string   `json:"level"         validate:"omitempty,oneof=beginner intermediate advanced"`
	Tags          *[]string `json:"tags"          validate:"omitempty,max=20,dive,max=50"`
	CoverImageKey *string   `json:"coverImageKey" validate:"omitempty,max=300"`
	Published     *bool     `json:"published"`
}

type FormationResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Level         string    `json:"level"`
	Tags          []string  `json:"tags"`
	CoverImageKey string    `json:"coverImageKey,omitempty"`
	Published     bool      `json:"published"`
	LikeCount     int64     `json:"likeCount"`
	ViewCount     int64     `json:"viewCount"`
	ChapterCount  int64     `json:"chapterCount"`
	CreatedBy     string    `json:"createdBy,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type FormationListResponse struct {
	Formations []FormationResponse `json:"formations"`
	Total      int64               `json:"total"`
	Limit      uint64              `json:"limit"`
	Offset     uint64              `json:"offset"`
}

func ToFormationResponse(f *model.Formation) FormationResponse {
	tags := f.Tags
	if tags == nil {
		tags = []string{}
	}

	return FormationResponse{
		ID:            f.ID.Hex(),
		Title:         f.Title,
		Slug:          f.Slug,
		Description:   f.Description,
		Category:      f.Category,
		Level:         f.Level,
		Tags:          tags,
		CoverImageKey: f.CoverImageKey,
		Published:     f.Published,
		LikeCount:     f.LikeCount,
		ViewCount:     f.ViewCount,
		ChapterCount:  f.ChapterCount,
		CreatedBy:     f.CreatedBy,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.UpdatedAt,
	}
}

type CreateChapterRequest struct {
	Title           string `json:"title"           validate:"required,max=200"`
	Content         string `json:"content"`
	VideoURL        string `json:"videoUrl"        validate:"omitempty,url,max=500"`
	DurationMinutes int    `json:"durationMinutes" validate:"min=0,max=10000"`
	Published       bool   `json:"published"`
}

type UpdateChapterRequest struct {
	Title           *string `json:"title"           validate:"omitempty,min=1,max=200"`
	Content         *string `json:"content"`
	VideoURL        *string `json:"videoUrl"        validate:"omitempty,url,max=500"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitempty,min=0,max=10000"`
	Published       *bool   `json:"published"`
}

type ReorderChaptersRequest struct {
	ChapterIDs []string `json:"chapterIds" validate:"required,min=1,dive,required"`
}

type ChapterResponse struct {
	ID              string    `json:"id"`
	FormationID     string    `json:"formationId"`
	Title           string    `json:"title"`
	Content         string    `json:"content"`
	VideoURL        string    `json:"videoUrl,omitempty"`
	Position        int       `json:"position"`
	DurationMinutes int       `json:"durationMinutes"`
	Published       bool      `json:"published"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type ChapterListResponse struct {
	Chapters []ChapterResponse `json:"chapters"`
}

func ToChapterResponse(c *model.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:              c.ID.Hex(),
		FormationID:     c.FormationID.Hex(),
		Title:           c.Title,
		Content:         c.Content,
		VideoURL:        c.VideoURL,
		Position:        c.Position,
		DurationMinutes: c.DurationMinutes,
		Published:       c.Published,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func ToChapterListResponse(chapters []*model.Chapter) ChapterListResponse {
	resp := ChapterListResponse{Chapters: make([]ChapterResponse, len(chapters))}
	for i, c := range chapters {
		resp.Chapters[i] = ToChapterResponse(c)
	}

	return resp
}
