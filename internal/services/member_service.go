package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/quollhaven/wildlife-rehab-api/internal/identity"
	"github.com/quollhaven/wildlife-rehab-api/internal/models"
	"github.com/quollhaven/wildlife-rehab-api/internal/rbac"
	"github.com/quollhaven/wildlife-rehab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrForbidden          = errors.New("permission denied")
	ErrMemberNotFound     = errors.New("organization member not found")
	ErrAlreadyProvisioned = errors.New("organization member already provisioned")
	ErrSelfRoleChange     = errors.New("cannot change your own role")
	ErrLastAdmin          = errors.New("cannot demote the last admin")
	ErrInvalidRole        = errors.New("invalid role")
)

// MemberService resolves roles, answers permission checks and manages role
// records. Every decision reads the current member row; nothing is cached
// across requests, so role changes take effect immediately.
type MemberService struct {
	memberRepo repository.OrgMemberRepository
	directory  identity.Client
	audit      *AuditService
}

// NewMemberService creates a new MemberService.
func NewMemberService(memberRepo repository.OrgMemberRepository, directory identity.Client, audit *AuditService) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		directory:  directory,
		audit:      audit,
	}
}

// GetMember returns the caller's member record, or ErrMemberNotFound.
func (s *MemberService) GetMember(userID, orgID string) (*models.OrgMember, error) {
	member, err := s.memberRepo.Find(orgID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return member, nil
}

// GetUserRole returns the user's role in the organization, or "" when the
// user is not a member.
func (s *MemberService) GetUserRole(userID, orgID string) (rbac.Role, error) {
	member, err := s.GetMember(userID, orgID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return "", nil
		}
		return "", err
	}
	return member.Role, nil
}

// ListMemberships lists the caller's memberships across organizations.
func (s *MemberService) ListMemberships(userID string) ([]models.OrgMember, error) {
	members, err := s.memberRepo.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return members, nil
}

// ListMembers lists all members of an organization.
func (s *MemberService) ListMembers(orgID string) ([]models.OrgMember, error) {
	members, err := s.memberRepo.ListByOrg(orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// RequirePermission loads the user's member record and checks the
// permission table. Missing records and unrecognized roles fail closed
// with ErrForbidden.
func (s *MemberService) RequirePermission(userID, orgID string, action rbac.Action) (*models.OrgMember, error) {
	member, err := s.GetMember(userID, orgID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !rbac.HasPermission(member.Role, action) {
		return nil, ErrForbidden
	}
	return member, nil
}

// RequireMinimumRole loads the user's member record and fails with
// ErrForbidden when the role is below min or no record exists.
func (s *MemberService) RequireMinimumRole(userID, orgID string, min rbac.Role) (*models.OrgMember, error) {
	member, err := s.GetMember(userID, orgID)
	if err != nil {
		if errors.Is(err, ErrMemberNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if !member.Role.AtLeast(min) {
		return nil, ErrForbidden
	}
	return member, nil
}

// ProvisionSelfAsAdmin bootstraps the organization's first admin. The
// caller must not already have a member record, and the external
// membership directory must report an admin-equivalent role for the
// organization. This is the only path that creates a member without an
// existing admin.
func (s *MemberService) ProvisionSelfAsAdmin(ctx context.Context, userID, orgID string) (*models.OrgMember, error) {
	if _, err := s.memberRepo.Find(orgID, userID); err == nil {
		return nil, ErrAlreadyProvisioned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing member: %w", err)
	}

	memberships, err := s.directory.OrganizationMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query membership directory: %w", err)
	}
	eligible := false
	for _, m := range memberships {
		if m.OrganizationID == orgID && m.AdminEquivalent() {
			eligible = true
			break
		}
	}
	if !eligible {
		return nil, ErrForbidden
	}

	member := &models.OrgMember{
		OrgID:  orgID,
		UserID: userID,
		Role:   rbac.RoleAdmin,
	}
	if err := s.memberRepo.Create(member); err != nil {
		// A concurrent provision attempt may have won the unique key.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyProvisioned
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.audit.Record(AuditEntry{
		UserID:   userID,
		OrgID:    orgID,
		Action:   models.AuditActionRoleChange,
		Entity:   EntityOrgMember,
		EntityID: userID,
		Metadata: map[string]any{"role": rbac.RoleAdmin, "provisioned": true},
	})
	return member, nil
}

// AssignRole changes the target member's role on behalf of actor. The
// actor needs user:manage, may not target their own record, and the
// target must be a verified member of the organization according to the
// external membership directory.
func (s *MemberService) AssignRole(ctx context.Context, actorID, orgID, targetID string, role rbac.Role) (*models.OrgMember, error) {
	if _, err := s.RequirePermission(actorID, orgID, rbac.ActionUserManage); err != nil {
		return nil, err
	}

	if targetID == actorID {
		return nil, ErrSelfRoleChange
	}

	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	memberships, err := s.directory.OrganizationMemberships(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query membership directory: %w", err)
	}
	verified := false
	for _, m := range memberships {
		if m.OrganizationID == orgID {
			verified = true
			break
		}
	}
	if !verified {
		return nil, ErrMemberNotFound
	}

	member, err := s.memberRepo.UpdateRole(orgID, targetID, role)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrMemberNotFound
		case errors.Is(err, repository.ErrLastAdmin):
			return nil, ErrLastAdmin
		default:
			return nil, fmt.Errorf("failed to update role: %w", err)
		}
	}

	s.audit.Record(AuditEntry{
		UserID:   actorID,
		OrgID:    orgID,
		Action:   models.AuditActionRoleChange,
		Entity:   EntityOrgMember,
		EntityID: targetID,
		Metadata: map[string]any{"role": role},
	})
	return member, nil
}
