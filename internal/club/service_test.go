package club

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"matinee/api/internal/store"
)

type fakeClubStore struct {
	insertClubFn          func(context.Context, store.Club) error
	getClubFn             func(context.Context, string) (store.Club, error)
	insertMemberFn        func(context.Context, store.ClubMember) (bool, error)
	deleteMemberFn        func(context.Context, string, string) (bool, error)
	getMemberFn           func(context.Context, string, string) (store.ClubMember, error)
	listMembersFn         func(context.Context, string) ([]store.ClubMember, error)
	updateMemberRoleFn    func(context.Context, string, string, string) (bool, error)
	appendRotationEntryFn func(context.Context, string, string) error
}

func (f *fakeClubStore) InsertClub(ctx context.Context, club store.Club) error {
	if f.insertClubFn != nil {
		return f.insertClubFn(ctx, club)
	}
	return nil
}
func (f *fakeClubStore) GetClub(ctx context.Context, clubID string) (store.Club, error) {
	if f.getClubFn != nil {
		return f.getClubFn(ctx, clubID)
	}
	return store.Club{}, sql.ErrNoRows
}
func (f *fakeClubStore) InsertMember(ctx context.Context, member store.ClubMember) (bool, error) {
	if f.insertMemberFn != nil {
		return f.insertMemberFn(ctx, member)
	}
	return true, nil
}
func (f *fakeClubStore) DeleteMember(ctx context.Context, clubID, memberID string) (bool, error) {
	if f.deleteMemberFn != nil {
		return f.deleteMemberFn(ctx, clubID, memberID)
	}
	return true, nil
}
func (f *fakeClubStore) GetMember(ctx context.Context, clubID, memberID string) (store.ClubMember, error) {
	if f.getMemberFn != nil {
		return f.getMemberFn(ctx, clubID, memberID)
	}
	return store.ClubMember{}, sql.ErrNoRows
}
func (f *fakeClubStore) ListMembers(ctx context.Context, clubID string) ([]store.ClubMember, error) {
	if f.listMembersFn != nil {
		return f.listMembersFn(ctx, clubID)
	}
	return nil, nil
}
func (f *fakeClubStore) UpdateMemberRole(ctx context.Context, clubID, memberID, role string) (bool, error) {
	if f.updateMemberRoleFn != nil {
		return f.updateMemberRoleFn(ctx, clubID, memberID, role)
	}
	return true, nil
}
func (f *fakeClubStore) AppendRotationEntry(ctx context.Context, clubID, memberID string) error {
	if f.appendRotationEntryFn != nil {
		return f.appendRotationEntryFn(ctx, clubID, memberID)
	}
	return nil
}

func TestCreateSeedsAdminAndRotation(t *testing.T) {
	var insertedMember store.ClubMember
	var rotationMember string
	fake := &fakeClubStore{
		insertMemberFn: func(_ context.Context, member store.ClubMember) (bool, error) {
			insertedMember = member
			return true, nil
		},
		appendRotationEntryFn: func(_ context.Context, _, memberID string) error {
			rotationMember = memberID
			return nil
		},
	}
	service := New(fake)

	club, code, err := service.Create(context.Background(), "Friday Films", 3, "mem_1", "Sam")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if code == "" {
		t.Fatal("expected a plain invite code")
	}
	if bcrypt.CompareHashAndPassword([]byte(club.InviteCodeHash), []byte(code)) != nil {
		t.Fatal("invite code hash does not match returned code")
	}
	if insertedMember.Role != store.RoleAdmin || insertedMember.MemberID != "mem_1" {
		t.Fatalf("creator not inserted as admin: %+v", insertedMember)
	}
	if rotationMember != "mem_1" {
		t.Fatalf("creator not appended to rotation, got %q", rotationMember)
	}
}

func TestJoinRejectsBadInviteCode(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("right-code"), bcrypt.MinCost)
	fake := &fakeClubStore{
		getClubFn: func(context.Context, string) (store.Club, error) {
			return store.Club{ID: "club_1", InviteCodeHash: string(hash)}, nil
		},
	}
	service := New(fake)

	err := service.Join(context.Background(), "club_1", "mem_2", "Robin", "wrong-code")
	if !errors.Is(err, ErrBadInviteCode) {
		t.Fatalf("expected ErrBadInviteCode, got %v", err)
	}
}

func TestJoinAppendsRotationEntry(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("code"), bcrypt.MinCost)
	appended := false
	fake := &fakeClubStore{
		getClubFn: func(context.Context, string) (store.Club, error) {
			return store.Club{ID: "club_1", InviteCodeHash: string(hash)}, nil
		},
		appendRotationEntryFn: func(context.Context, string, string) error {
			appended = true
			return nil
		},
	}
	service := New(fake)

	if err := service.Join(context.Background(), "club_1", "mem_2", "Robin", "code"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if !appended {
		t.Fatal("expected rotation entry appended on join")
	}
}

func TestJoinTwiceReportsAlreadyMember(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("code"), bcrypt.MinCost)
	fake := &fakeClubStore{
		getClubFn: func(context.Context, string) (store.Club, error) {
			return store.Club{ID: "club_1", InviteCodeHash: string(hash)}, nil
		},
		insertMemberFn: func(context.Context, store.ClubMember) (bool, error) {
			return false, nil
		},
	}
	service := New(fake)

	err := service.Join(context.Background(), "club_1", "mem_2", "Robin", "code")
	if !errors.Is(err, ErrAlreadyMember) {
		t.Fatalf("expected ErrAlreadyMember, got %v", err)
	}
}

func TestLeaveUnknownMember(t *testing.T) {
	fake := &fakeClubStore{
		deleteMemberFn: func(context.Context, string, string) (bool, error) {
			return false, nil
		},
	}
	service := New(fake)

	err := service.Leave(context.Background(), "club_1", "mem_9")
	if !errors.Is(err, ErrNotMember) {
		t.Fatalf("expected ErrNotMember, got %v", err)
	}
}

func TestPromoteRequiresAdmin(t *testing.T) {
	fake := &fakeClubStore{
		getMemberFn: func(_ context.Context, _, memberID string) (store.ClubMember, error) {
			return store.ClubMember{MemberID: memberID, Role: store.RoleMember}, nil
		},
	}
	service := New(fake)

	err := service.Promote(context.Background(), "club_1", "mem_2", "mem_3")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestIsMemberFalseOnMissingRow(t *testing.T) {
	service := New(&fakeClubStore{})
	member, err := service.IsMember(context.Background(), "club_1", "mem_404")
	if err != nil {
		t.Fatalf("is member: %v", err)
	}
	if member {
		t.Fatal("expected not a member")
	}
}
