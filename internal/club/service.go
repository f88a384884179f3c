// Package club handles the membership plumbing around the selection engine:
// creating clubs, joining via invite code, leaving, and role management. It
// also implements the membership interface the engine consumes.
package club

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"matinee/api/internal/store"
	"matinee/api/internal/util"
)

var (
	// ErrBadInviteCode indicates the supplied invite code did not match.
	ErrBadInviteCode = errors.New("club invite code invalid")
	// ErrAlreadyMember indicates the caller already belongs to the club.
	ErrAlreadyMember = errors.New("club member already joined")
	// ErrNotMember indicates the target is not a member of the club.
	ErrNotMember = errors.New("club member not found")
	// ErrForbidden indicates the caller lacks the admin role.
	ErrForbidden = errors.New("club action requires admin")
)

type Store interface {
	InsertClub(ctx context.Context, club store.Club) error
	GetClub(ctx context.Context, clubID string) (store.Club, error)
	InsertMember(ctx context.Context, member store.ClubMember) (bool, error)
	DeleteMember(ctx context.Context, clubID, memberID string) (bool, error)
	GetMember(ctx context.Context, clubID, memberID string) (store.ClubMember, error)
	ListMembers(ctx context.Context, clubID string) ([]store.ClubMember, error)
	UpdateMemberRole(ctx context.Context, clubID, memberID, role string) (bool, error)
	AppendRotationEntry(ctx context.Context, clubID, memberID string) error
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// Create makes a new club with the creator as its first admin and first
// rotation entry. The plain invite code is returned exactly once; only its
// bcrypt hash is stored.
func (s *Service) Create(ctx context.Context, name string, suggestionCount int, creatorID, creatorName string) (store.Club, string, error) {
	if suggestionCount <= 0 {
		suggestionCount = 3
	}

	inviteCode := util.NewShortID("")
	hash, err := bcrypt.GenerateFromPassword([]byte(inviteCode), bcrypt.DefaultCost)
	if err != nil {
		return store.Club{}, "", fmt.Errorf("hash invite code: %w", err)
	}

	club := store.Club{
		ID:              util.NewShortID("club"),
		Name:            name,
		SuggestionCount: suggestionCount,
		InviteCodeHash:  string(hash),
	}
	if err := s.store.InsertClub(ctx, club); err != nil {
		return store.Club{}, "", err
	}

	if _, err := s.store.InsertMember(ctx, store.ClubMember{
		ClubID:      club.ID,
		MemberID:    creatorID,
		DisplayName: creatorName,
		Role:        store.RoleAdmin,
	}); err != nil {
		return store.Club{}, "", err
	}
	if err := s.store.AppendRotationEntry(ctx, club.ID, creatorID); err != nil {
		return store.Club{}, "", err
	}

	return club, inviteCode, nil
}

// Join verifies the invite code and appends the member to the end of the
// rotation.
func (s *Service) Join(ctx context.Context, clubID, memberID, displayName, inviteCode string) error {
	club, err := s.store.GetClub(ctx, clubID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(club.InviteCodeHash), []byte(inviteCode)) != nil {
		return ErrBadInviteCode
	}

	inserted, err := s.store.InsertMember(ctx, store.ClubMember{
		ClubID:      clubID,
		MemberID:    memberID,
		DisplayName: displayName,
		Role:        store.RoleMember,
	})
	if err != nil {
		return err
	}
	if !inserted {
		return ErrAlreadyMember
	}

	return s.store.AppendRotationEntry(ctx, clubID, memberID)
}

// Leave removes the membership row only. The rotation entry stays behind;
// the engine skips departed members when computing turns.
func (s *Service) Leave(ctx context.Context, clubID, memberID string) error {
	deleted, err := s.store.DeleteMember(ctx, clubID, memberID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotMember
	}
	return nil
}

func (s *Service) Members(ctx context.Context, clubID string) ([]store.ClubMember, error) {
	return s.store.ListMembers(ctx, clubID)
}

// Promote grants the admin role; only admins may promote.
func (s *Service) Promote(ctx context.Context, clubID, actorID, memberID string) error {
	admin, err := s.IsAdmin(ctx, clubID, actorID)
	if err != nil {
		return err
	}
	if !admin {
		return ErrForbidden
	}
	updated, err := s.store.UpdateMemberRole(ctx, clubID, memberID, store.RoleAdmin)
	if err != nil {
		return err
	}
	if !updated {
		return ErrNotMember
	}
	return nil
}

// Membership interface consumed by the engine.

func (s *Service) IsMember(ctx context.Context, clubID, memberID string) (bool, error) {
	_, err := s.store.GetMember(ctx, clubID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) IsAdmin(ctx context.Context, clubID, memberID string) (bool, error) {
	member, err := s.store.GetMember(ctx, clubID, memberID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return member.Role == store.RoleAdmin, nil
}

// CurrentMembers returns the ids of everyone currently in the club, in join
// order.
func (s *Service) CurrentMembers(ctx context.Context, clubID string) ([]string, error) {
	members, err := s.store.ListMembers(ctx, clubID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(members))
	for _, member := range members {
		ids = append(ids, member.MemberID)
	}
	return ids, nil
}
