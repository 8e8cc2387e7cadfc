package dto

import (
	"time"

	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
)

// OrgMemberDTO represents a member's role record in API responses
type OrgMemberDTO struct {
	UserID    string    `json:"user_id"`
	OrgID     string    `json:"org_id"`
	Role      rbac.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MembershipDTO represents one of the caller's memberships
type MembershipDTO struct {
	OrgID string    `json:"org_id"`
	Role  rbac.Role `json:"role"`
}

// ToOrgMemberDTO converts an OrgMember model to OrgMemberDTO
func ToOrgMemberDTO(member models.OrgMember) OrgMemberDTO {
	return OrgMemberDTO{
		UserID:    member.UserID,
		OrgID:     member.OrgID,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
		UpdatedAt: member.UpdatedAt,
	}
}

// ToMembershipDTOs converts membership records to DTOs
func ToMembershipDTOs(members []models.OrgMember) []MembershipDTO {
	dtos := make([]MembershipDTO, len(members))
	for i, m := range members {
		dtos[i] = MembershipDTO{
			OrgID: m.OrgID,
			Role:  m.Role,
		}
	}
	return dtos
}

// ToOrgMemberDTOs converts member records to DTOs
func ToOrgMemberDTOs(members []models.OrgMember) []OrgMemberDTO {
	dtos := make([]OrgMemberDTO, len(members))
	for i, m := range members {
		dtos[i] = ToOrgMemberDTO(m)
	}
	return dtos
}
