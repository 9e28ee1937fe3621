package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberNameEmpty     = errors.New("member name is required")
	ErrMemberNameTooLong   = errors.New("member name must be 200 characters or less")
	ErrMemberSuspended     = errors.New("member is suspended")
	ErrMemberStatusInvalid = errors.New("member status must be active or suspended")
)

// MemberStatus is the lifecycle state of a society member.
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusSuspended MemberStatus = "suspended"
)

// Member is a subscriber of the society. Suspended members keep their
// history but cannot receive new loans or deposits.
type Member struct {
	ID                 int32           `json:"id"`
	Name               string          `json:"name"`
	Phone              *string         `json:"phone,omitempty"`
	SubscriptionAmount decimal.Decimal `json:"subscriptionAmount"`
	Status             MemberStatus    `json:"status"`
	JoinDate           time.Time       `json:"joinDate"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (m *Member) Validate() error {
	if m.Name == "" {
		return ErrMemberNameEmpty
	}
	if len(m.Name) > MaxMemberNameLength {
		return ErrMemberNameTooLong
	}
	if m.Status != MemberStatusActive && m.Status != MemberStatusSuspended {
		return ErrMemberStatusInvalid
	}
	return nil
}

type MemberRepository interface {
	Create(member *Member) (*Member, error)
	GetByID(id int32) (*Member, error)
	List(status *MemberStatus) ([]*Member, error)
	Update(member *Member) (*Member, error)
	UpdateStatus(id int32, status MemberStatus) (*Member, error)
}
