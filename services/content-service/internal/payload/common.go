package payload

import (
	"time"

	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/model"
	"github.com/vasapolrittideah/formation-hub/services/content-service/internal/usecase"
)

type BulkActionRequest struct {
	IDs    []string `json:"ids"    validate:"required,min=1,max=100,dive,required"`
	Action string   `json:"action" validate:"required,oneof=publish unpublish delete"`
}

type BulkFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

type BulkActionResponse struct {
	Processed int           `json:"processed"`
	Failed    []BulkFailure `json:"failed"`
}

func ToBulkActionResponse(result *usecase.BulkResult) BulkActionResponse {
	resp := BulkActionResponse{Processed: result.Processed, Failed: make([]BulkFailure, len(result.Failed))}
	for i, f := range result.Failed {
		resp.Failed[i] = BulkFailure{ID: f.ID, Error: f.Error}
	}

	return resp
}

type LikeStateResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

type LikeResponse struct {
	TargetKind string    `json:"targetKind"`
	TargetID   string    `json:"targetId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type LikeListResponse struct {
	Likes []LikeResponse `json:"likes"`
}

func ToLikeListResponse(likes []*model.Like) LikeListResponse {
	resp := LikeListResponse{Likes: make([]LikeResponse, len(likes))}
	for i, l := range likes {
		resp.Likes[i] = LikeResponse{
			TargetKind: string(l.TargetKind),
			TargetID:   l.TargetID.Hex(),
			CreatedAt:  l.CreatedAt,
		}
	}

	return resp
}

type PresignUploadRequest struct {
	Folder      string `json:"folder"      validate:"required,oneof=formations templates prompts"`
	ContentType string `json:"contentType" validate:"required"`
}
