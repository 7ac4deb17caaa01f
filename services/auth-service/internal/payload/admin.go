package payload

import (
	"time"

	"github.com/vasapolrittideah/formation-hub/services/auth-service/internal/model"
)

type UserListResponse struct {
	Users  []UserResponse `json:"users"`
	Total  int64          `json:"total"`
	Limit  uint64         `json:"limit"`
	Offset uint64         `json:"offset"`
}

// AdminUserResponse adds the linked sign-in providers to a user.
type AdminUserResponse struct {
	UserResponse
	Providers []string `json:"providers"`
}

type AdminUpdateUserRequest struct {
	Role     *string `json:"role"     validate:"omitempty,oneof=admin user"`
	Verified *bool   `json:"verified"`
	Disabled *bool   `json:"disabled"`
}

type GenerateInviteCodesRequest struct {
	Count int    `json:"count" validate:"required,min=1,max=100"`
	Note  string `json:"note"  validate:"max=200"`
}

type SendInviteCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type InviteCodeResponse struct {
	Code      string     `json:"code"`
	Note      string     `json:"note,omitempty"`
	Used      bool       `json:"used"`
	UsedBy    string     `json:"usedBy,omitempty"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	CreatedBy string     `json:"createdBy,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

type InviteCodeListResponse struct {
	Codes []InviteCodeResponse `json:"codes"`
	Count int                  `json:"count"`
}

func ToInviteCodeResponse(c *model.InviteCode) InviteCodeResponse {
	resp := InviteCodeResponse{
		Code:      c.Code,
		Note:      c.Note,
		Used:      c.Used,
		UsedAt:    c.UsedAt,
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
	if c.UsedBy != nil {
		resp.UsedBy = c.UsedBy.Hex()
	}

	return resp
}

func ToInviteCodeListResponse(codes []*model.InviteCode) InviteCodeListResponse {
	resp := InviteCodeListResponse{Codes: make([]InviteCodeResponse, len(codes)), Count: len(codes)}
	for i, c := range codes {
		resp.Codes[i] = ToInviteCodeResponse(c)
	}

	return resp
}
