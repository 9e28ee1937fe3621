package service

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/testutil"
)

func TestCreateMember_TrimsNameAndDefaultsActive(t *testing.T) {
	svc := NewMemberService(testutil.NewMockMemberRepository())

	member, err := svc.CreateMember(CreateMemberInput{
		Name:               "  Asha  ",
		SubscriptionAmount: decimal.NewFromInt(2000),
		JoinDate:           date(2024, 4, 1),
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if member.Name != "Asha" {
		t.Errorf("Expected trimmed name Asha, got %q", member.Name)
	}
	if member.Status != domain.MemberStatusActive {
		t.Errorf("Expected active status, got %s", member.Status)
	}
}

func TestCreateMember_RejectsEmptyName(t *testing.T) {
	svc := NewMemberService(testutil.NewMockMemberRepository())

	_, err := svc.CreateMember(CreateMemberInput{
		Name:               "   ",
		SubscriptionAmount: decimal.NewFromInt(2000),
	})
	if err != domain.ErrMemberNameEmpty {
		t.Errorf("Expected ErrMemberNameEmpty, got %v", err)
	}
}

func TestCreateMember_RejectsOverlongName(t *testing.T) {
	svc := NewMemberService(testutil.NewMockMemberRepository())

	_, err := svc.CreateMember(CreateMemberInput{
		Name:               strings.Repeat("a", domain.MaxMemberNameLength+1),
		SubscriptionAmount: decimal.NewFromInt(2000),
	})
	if err != domain.ErrMemberNameTooLong {
		t.Errorf("Expected ErrMemberNameTooLong, got %v", err)
	}
}

func TestGetMembers_FiltersByStatus(t *testing.T) {
	repo := testutil.NewMockMemberRepository()
	repo.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})
	repo.AddMember(&domain.Member{ID: 2, Name: "Binu", Status: domain.MemberStatusSuspended})
	svc := NewMemberService(repo)

	active := domain.MemberStatusActive
	members, err := svc.GetMembers(&active)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(members) != 1 || members[0].Name != "Asha" {
		t.Errorf("Expected only Asha, got %d members", len(members))
	}

	all, err := svc.GetMembers(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 members without filter, got %d", len(all))
	}
}

func TestSuspendAndActivate(t *testing.T) {
	repo := testutil.NewMockMemberRepository()
	repo.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})
	svc := NewMemberService(repo)

	member, err := svc.Suspend(1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if member.Status != domain.MemberStatusSuspended {
		t.Errorf("Expected suspended, got %s", member.Status)
	}

	member, err = svc.Activate(1)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if member.Status != domain.MemberStatusActive {
		t.Errorf("Expected active, got %s", member.Status)
	}
}

func TestUpdateMember_ValidatesEditedFields(t *testing.T) {
	repo := testutil.NewMockMemberRepository()
	repo.AddMember(&domain.Member{ID: 1, Name: "Asha", Status: domain.MemberStatusActive})
	svc := NewMemberService(repo)

	phone := "9876543210"
	member, err := svc.UpdateMember(1, "Asha K", &phone, decimal.NewFromInt(2500))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if member.Name != "Asha K" || member.Phone == nil || *member.Phone != phone {
		t.Errorf("Expected updated details, got %+v", member)
	}

	if _, err := svc.UpdateMember(1, "", nil, decimal.NewFromInt(2500)); err != domain.ErrMemberNameEmpty {
		t.Errorf("Expected ErrMemberNameEmpty, got %v", err)
	}
}
