package testutil

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sanchaya/society-backend/internal/domain"
	"github.com/sanchaya/society-backend/internal/util"
)

// MockMemberRepository is an in-memory domain.MemberRepository
type MockMemberRepository struct {
	Members map[int32]*domain.Member
	NextID  int32
}

// NewMockMemberRepository creates a new MockMemberRepository
func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{Members: make(map[int32]*domain.Member), NextID: 1}
}

// AddMember seeds a member (helper for tests)
func (m *MockMemberRepository) AddMember(member *domain.Member) {
	if member.ID == 0 {
		member.ID = m.NextID
	}
	if member.ID >= m.NextID {
		m.NextID = member.ID + 1
	}
	m.Members[member.ID] = member
}

func (m *MockMemberRepository) Create(member *domain.Member) (*domain.Member, error) {
	member.ID = m.NextID
	m.NextID++
	member.CreatedAt = time.Now()
	member.UpdatedAt = member.CreatedAt
	m.Members[member.ID] = member
	return member, nil
}

func (m *MockMemberRepository) GetByID(id int32) (*domain.Member, error) {
	if member, ok := m.Members[id]; ok {
		return member, nil
	}
	return nil, domain.ErrMemberNotFound
}

func (m *MockMemberRepository) List(status *domain.MemberStatus) ([]*domain.Member, error) {
	var out []*domain.Member
	for _, member := range m.Members {
		if status == nil || member.Status == *status {
			out = append(out, member)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockMemberRepository) Update(member *domain.Member) (*domain.Member, error) {
	if _, ok := m.Members[member.ID]; !ok {
		return nil, domain.ErrMemberNotFound
	}
	member.UpdatedAt = time.Now()
	m.Members[member.ID] = member
	return member, nil
}

func (m *MockMemberRepository) UpdateStatus(id int32, status domain.MemberStatus) (*domain.Member, error) {
	member, ok := m.Members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	member.Status = status
	member.UpdatedAt = time.Now()
	return member, nil
}

// MockLoanRepository is an in-memory domain.LoanRepository. Member names in
// listings come from an optional linked MockMemberRepository.
type MockLoanRepository struct {
	Loans      map[int32]*domain.Loan
	NextID     int32
	Members    *MockMemberRepository
	Repayments *MockRepaymentRepository
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{Loans: make(map[int32]*domain.Loan), NextID: 1}
}

// AddLoan seeds a loan (helper for tests)
func (m *MockLoanRepository) AddLoan(loan *domain.Loan) {
	if loan.ID == 0 {
		loan.ID = m.NextID
	}
	if loan.ID >= m.NextID {
		m.NextID = loan.ID + 1
	}
	m.Loans[loan.ID] = loan
}

func (m *MockLoanRepository) Create(loan *domain.Loan) (*domain.Loan, error) {
	loan.ID = m.NextID
	m.NextID++
	loan.CreatedAt = time.Now()
	loan.UpdatedAt = loan.CreatedAt
	m.Loans[loan.ID] = loan
	return loan, nil
}

func (m *MockLoanRepository) GetByID(id int32) (*domain.Loan, error) {
	if loan, ok := m.Loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) GetActiveByMember(memberID int32) (*domain.Loan, error) {
	for _, loan := range m.Loans {
		if loan.MemberID == memberID && loan.Status == domain.LoanStatusActive {
			return loan, nil
		}
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) memberName(memberID int32) string {
	if m.Members == nil {
		return ""
	}
	if member, ok := m.Members.Members[memberID]; ok {
		return member.Name
	}
	return ""
}

func (m *MockLoanRepository) ListActive() ([]*domain.LoanWithMember, error) {
	var out []*domain.LoanWithMember
	for _, loan := range m.Loans {
		if loan.Status == domain.LoanStatusActive {
			out = append(out, &domain.LoanWithMember{Loan: *loan, MemberName: m.memberName(loan.MemberID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockLoanRepository) List() ([]*domain.LoanWithMember, error) {
	var out []*domain.LoanWithMember
	for _, loan := range m.Loans {
		out = append(out, &domain.LoanWithMember{Loan: *loan, MemberName: m.memberName(loan.MemberID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockLoanRepository) ApplyTopUp(id int32, extra decimal.Decimal) (*domain.Loan, error) {
	loan, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.ErrLoanNotActive
	}
	loan.Amount = loan.Amount.Add(extra)
	loan.Outstanding = loan.Outstanding.Add(extra)
	loan.UpdatedAt = time.Now()
	return loan, nil
}

func (m *MockLoanRepository) ApplyRepayment(rep *domain.Repayment) (*domain.Loan, error) {
	loan, ok := m.Loans[rep.LoanID]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.ErrLoanNotActive
	}
	if rep.PrincipalAmount.GreaterThan(loan.Outstanding) {
		return nil, domain.ErrLoanConcurrentEdit
	}
	if m.Repayments != nil {
		m.Repayments.AddRepayment(rep)
	}
	loan.Outstanding = loan.Outstanding.Sub(rep.PrincipalAmount)
	if loan.Outstanding.LessThanOrEqual(decimal.Zero) {
		loan.Outstanding = decimal.Zero
		loan.Status = domain.LoanStatusClosed
	}
	loan.UpdatedAt = time.Now()
	return loan, nil
}

func (m *MockLoanRepository) EarliestLoanDate() (*time.Time, error) {
	var earliest *time.Time
	for _, loan := range m.Loans {
		d := loan.LoanDate
		if earliest == nil || d.Before(*earliest) {
			earliest = &d
		}
	}
	return earliest, nil
}

// MockRepaymentRepository is an in-memory domain.RepaymentRepository
type MockRepaymentRepository struct {
	Repayments []*domain.Repayment
	NextID     int32
}

// NewMockRepaymentRepository creates a new MockRepaymentRepository
func NewMockRepaymentRepository() *MockRepaymentRepository {
	return &MockRepaymentRepository{NextID: 1}
}

// AddRepayment seeds a repayment (helper for tests)
func (m *MockRepaymentRepository) AddRepayment(rep *domain.Repayment) {
	if rep.ID == 0 {
		rep.ID = m.NextID
	}
	if rep.ID >= m.NextID {
		m.NextID = rep.ID + 1
	}
	m.Repayments = append(m.Repayments, rep)
}

func (m *MockRepaymentRepository) ListByLoan(loanID int32) ([]*domain.Repayment, error) {
	var out []*domain.Repayment
	for _, r := range m.Repayments {
		if r.LoanID == loanID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MockRepaymentRepository) SumPrincipalByLoan(loanID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range m.Repayments {
		if r.LoanID == loanID {
			sum = sum.Add(r.PrincipalAmount)
		}
	}
	return sum, nil
}

func (m *MockRepaymentRepository) SumInterestByLoan(loanID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range m.Repayments {
		if r.LoanID == loanID {
			sum = sum.Add(r.InterestAmount)
		}
	}
	return sum, nil
}

func (m *MockRepaymentRepository) SumInterestUpTo(date time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range m.Repayments {
		if !r.PaymentDate.After(date) {
			sum = sum.Add(r.InterestAmount)
		}
	}
	return sum, nil
}

func (m *MockRepaymentRepository) SumInterestInRange(rng util.DateRange) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range m.Repayments {
		if rng.Contains(r.PaymentDate) {
			sum = sum.Add(r.InterestAmount)
		}
	}
	return sum, nil
}

func (m *MockRepaymentRepository) SumPrincipalInRange(rng util.DateRange) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, r := range m.Repayments {
		if rng.Contains(r.PaymentDate) {
			sum = sum.Add(r.PrincipalAmount)
		}
	}
	return sum, nil
}

func (m *MockRepaymentRepository) LoanIDsWithInterestInMonth(month util.MonthKey) (map[int32]bool, error) {
	out := make(map[int32]bool)
	for _, r := range m.Repayments {
		if util.MonthKeyFromDate(r.PaymentDate) == month && r.InterestAmount.GreaterThan(decimal.Zero) {
			out[r.LoanID] = true
		}
	}
	return out, nil
}

// MockAccrualRepository is an in-memory domain.AccrualRepository
type MockAccrualRepository struct {
	Accruals []*domain.InterestAccrual
	NextID   int32
	// InsertBatchErr, when set, makes InsertBatch fail without writing.
	InsertBatchErr error
}

// NewMockAccrualRepository creates a new MockAccrualRepository
func NewMockAccrualRepository() *MockAccrualRepository {
	return &MockAccrualRepository{NextID: 1}
}

// AddAccrual seeds an accrual (helper for tests)
func (m *MockAccrualRepository) AddAccrual(a *domain.InterestAccrual) {
	if a.ID == 0 {
		a.ID = m.NextID
	}
	if a.ID >= m.NextID {
		m.NextID = a.ID + 1
	}
	m.Accruals = append(m.Accruals, a)
}

func (m *MockAccrualRepository) InsertBatch(accruals []*domain.InterestAccrual) error {
	if m.InsertBatchErr != nil {
		return m.InsertBatchErr
	}
	for _, a := range accruals {
		m.AddAccrual(a)
	}
	return nil
}

func (m *MockAccrualRepository) ExistsForMonth(month util.MonthKey) (bool, error) {
	for _, a := range m.Accruals {
		if a.AccrualMonth == month {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAccrualRepository) ListByLoan(loanID int32) ([]*domain.InterestAccrual, error) {
	var out []*domain.InterestAccrual
	for _, a := range m.Accruals {
		if a.LoanID == loanID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MockAccrualRepository) SumByLoan(loanID int32) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range m.Accruals {
		if a.LoanID == loanID {
			sum = sum.Add(a.AccruedAmount)
		}
	}
	return sum, nil
}

func (m *MockAccrualRepository) SumInRange(rng util.DateRange) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, a := range m.Accruals {
		if rng.Contains(a.AccrualDate) {
			sum = sum.Add(a.AccruedAmount)
		}
	}
	return sum, nil
}

func (m *MockAccrualRepository) DistinctMonths() ([]util.MonthKey, error) {
	seen := make(map[util.MonthKey]bool)
	var out []util.MonthKey
	for _, a := range m.Accruals {
		if !seen[a.AccrualMonth] {
			seen[a.AccrualMonth] = true
			out = append(out, a.AccrualMonth)
		}
	}
	return out, nil
}

// MockDepositRepository is an in-memory domain.DepositRepository
type MockDepositRepository struct {
	Deposits map[int32]*domain.FixedDeposit
	NextID   int32
	Members  *MockMemberRepository
}

// NewMockDepositRepository creates a new MockDepositRepository
func NewMockDepositRepository() *MockDepositRepository {
	return &MockDepositRepository{Deposits: make(map[int32]*domain.FixedDeposit), NextID: 1}
}

// AddDeposit seeds a deposit (helper for tests)
func (m *MockDepositRepository) AddDeposit(d *domain.FixedDeposit) {
	if d.ID == 0 {
		d.ID = m.NextID
	}
	if d.ID >= m.NextID {
		m.NextID = d.ID + 1
	}
	m.Deposits[d.ID] = d
}

func (m *MockDepositRepository) Create(d *domain.FixedDeposit) (*domain.FixedDeposit, error) {
	d.ID = m.NextID
	m.NextID++
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	m.Deposits[d.ID] = d
	return d, nil
}

func (m *MockDepositRepository) GetByID(id int32) (*domain.FixedDeposit, error) {
	if d, ok := m.Deposits[id]; ok {
		return d, nil
	}
	return nil, domain.ErrDepositNotFound
}

func (m *MockDepositRepository) memberName(memberID int32) string {
	if m.Members == nil {
		return ""
	}
	if member, ok := m.Members.Members[memberID]; ok {
		return member.Name
	}
	return ""
}

func (m *MockDepositRepository) List() ([]*domain.DepositWithMember, error) {
	var out []*domain.DepositWithMember
	for _, d := range m.Deposits {
		out = append(out, &domain.DepositWithMember{FixedDeposit: *d, MemberName: m.memberName(d.MemberID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockDepositRepository) ListActiveAsOf(date time.Time) ([]*domain.DepositWithMember, error) {
	var out []*domain.DepositWithMember
	for _, d := range m.Deposits {
		if d.Status == domain.DepositStatusActive && !d.DepositDate.After(date) {
			out = append(out, &domain.DepositWithMember{FixedDeposit: *d, MemberName: m.memberName(d.MemberID)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockDepositRepository) SumPrincipal() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, d := range m.Deposits {
		sum = sum.Add(d.Amount)
	}
	return sum, nil
}

// MockFDCalculationRepository is an in-memory domain.FDCalculationRepository
type MockFDCalculationRepository struct {
	Calculations []*domain.FDInterestCalculation
	NextID       int32
}

// NewMockFDCalculationRepository creates a new MockFDCalculationRepository
func NewMockFDCalculationRepository() *MockFDCalculationRepository {
	return &MockFDCalculationRepository{NextID: 1}
}

// AddCalculation seeds a calculation row (helper for tests)
func (m *MockFDCalculationRepository) AddCalculation(c *domain.FDInterestCalculation) {
	if c.ID == 0 {
		c.ID = m.NextID
	}
	if c.ID >= m.NextID {
		m.NextID = c.ID + 1
	}
	m.Calculations = append(m.Calculations, c)
}

func (m *MockFDCalculationRepository) ExistsForQuarter(year int, quarter string) (bool, error) {
	for _, c := range m.Calculations {
		if c.Year == year && c.Quarter == quarter {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockFDCalculationRepository) ReplaceForQuarter(year int, quarter string, rows []*domain.FDInterestCalculation) error {
	kept := m.Calculations[:0]
	for _, c := range m.Calculations {
		if !(c.Year == year && c.Quarter == quarter) {
			kept = append(kept, c)
		}
	}
	m.Calculations = kept
	for _, r := range rows {
		m.AddCalculation(r)
	}
	return nil
}

func (m *MockFDCalculationRepository) SumPriorInterest(fdID int32, year int, quarter string) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range m.Calculations {
		if c.FDID != fdID {
			continue
		}
		if c.Year < year || (c.Year == year && c.Quarter < quarter) {
			sum = sum.Add(c.InterestEarned)
		}
	}
	return sum, nil
}

func (m *MockFDCalculationRepository) SumEarnedInRange(rng util.DateRange) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range m.Calculations {
		if rng.Contains(c.CalculationDate) {
			sum = sum.Add(c.InterestEarned)
		}
	}
	return sum, nil
}

func (m *MockFDCalculationRepository) SumEarned() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, c := range m.Calculations {
		sum = sum.Add(c.InterestEarned)
	}
	return sum, nil
}

func (m *MockFDCalculationRepository) ListQuarterSummaries() ([]*domain.QuarterSummary, error) {
	type key struct {
		year    int
		quarter string
	}
	grouped := make(map[key]*domain.QuarterSummary)
	var order []key
	for _, c := range m.Calculations {
		k := key{c.Year, c.Quarter}
		s, ok := grouped[k]
		if !ok {
			s = &domain.QuarterSummary{Year: c.Year, Quarter: c.Quarter, TotalInterest: decimal.Zero, CalculationDate: c.CalculationDate}
			grouped[k] = s
			order = append(order, k)
		}
		s.DepositCount++
		s.TotalInterest = s.TotalInterest.Add(c.InterestEarned)
	}
	var out []*domain.QuarterSummary
	for _, k := range order {
		out = append(out, grouped[k])
	}
	return out, nil
}

// MockSubscriptionRepository is an in-memory domain.SubscriptionRepository
type MockSubscriptionRepository struct {
	Subscriptions []*domain.Subscription
	NextID        int32
	Members       *MockMemberRepository
}

// NewMockSubscriptionRepository creates a new MockSubscriptionRepository
func NewMockSubscriptionRepository() *MockSubscriptionRepository {
	return &MockSubscriptionRepository{NextID: 1}
}

// AddSubscription seeds a subscription (helper for tests)
func (m *MockSubscriptionRepository) AddSubscription(s *domain.Subscription) {
	if s.ID == 0 {
		s.ID = m.NextID
	}
	if s.ID >= m.NextID {
		m.NextID = s.ID + 1
	}
	m.Subscriptions = append(m.Subscriptions, s)
}

func (m *MockSubscriptionRepository) Create(s *domain.Subscription) (*domain.Subscription, error) {
	s.ID = m.NextID
	m.NextID++
	s.CreatedAt = time.Now()
	m.Subscriptions = append(m.Subscriptions, s)
	return s, nil
}

func (m *MockSubscriptionRepository) GetByID(id int32) (*domain.Subscription, error) {
	for _, s := range m.Subscriptions {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (m *MockSubscriptionRepository) Exists(memberID int32, month util.MonthKey) (bool, error) {
	for _, s := range m.Subscriptions {
		if s.MemberID == memberID && s.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockSubscriptionRepository) memberName(memberID int32) string {
	if m.Members == nil {
		return ""
	}
	if member, ok := m.Members.Members[memberID]; ok {
		return member.Name
	}
	return ""
}

func (m *MockSubscriptionRepository) ListByMonth(month util.MonthKey) ([]*domain.SubscriptionWithMember, error) {
	var out []*domain.SubscriptionWithMember
	for _, s := range m.Subscriptions {
		if s.Month == month {
			out = append(out, &domain.SubscriptionWithMember{Subscription: *s, MemberName: m.memberName(s.MemberID)})
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepository) ListInRange(rng util.DateRange) ([]*domain.SubscriptionWithMember, error) {
	var out []*domain.SubscriptionWithMember
	for _, s := range m.Subscriptions {
		if rng.Contains(s.PaymentDate) {
			out = append(out, &domain.SubscriptionWithMember{Subscription: *s, MemberName: m.memberName(s.MemberID)})
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepository) SumUpTo(date time.Time) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range m.Subscriptions {
		if !s.PaymentDate.After(date) {
			sum = sum.Add(s.Amount)
		}
	}
	return sum, nil
}

func (m *MockSubscriptionRepository) SumAll() (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, s := range m.Subscriptions {
		sum = sum.Add(s.Amount)
	}
	return sum, nil
}

func (m *MockSubscriptionRepository) MemberIDsForMonth(month util.MonthKey) (map[int32]bool, error) {
	out := make(map[int32]bool)
	for _, s := range m.Subscriptions {
		if s.Month == month {
			out[s.MemberID] = true
		}
	}
	return out, nil
}

func (m *MockSubscriptionRepository) Delete(id int32) error {
	for i, s := range m.Subscriptions {
		if s.ID == id {
			m.Subscriptions = append(m.Subscriptions[:i], m.Subscriptions[i+1:]...)
			return nil
		}
	}
	return domain.ErrSubscriptionNotFound
}

// MockQuarterRepository is an in-memory domain.QuarterRepository seeded with
// the default April-March financial year.
type MockQuarterRepository struct {
	Settings map[string]*domain.QuarterSetting
}

// NewMockQuarterRepository creates a new MockQuarterRepository
func NewMockQuarterRepository() *MockQuarterRepository {
	return &MockQuarterRepository{
		Settings: map[string]*domain.QuarterSetting{
			"Q1": {Quarter: "Q1", StartMonth: 4, EndMonth: 6},
			"Q2": {Quarter: "Q2", StartMonth: 7, EndMonth: 9},
			"Q3": {Quarter: "Q3", StartMonth: 10, EndMonth: 12},
			"Q4": {Quarter: "Q4", StartMonth: 1, EndMonth: 3},
		},
	}
}

func (m *MockQuarterRepository) GetAll() ([]*domain.QuarterSetting, error) {
	var out []*domain.QuarterSetting
	for _, name := range domain.QuarterNames {
		if q, ok := m.Settings[name]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *MockQuarterRepository) GetByName(name string) (*domain.QuarterSetting, error) {
	if q, ok := m.Settings[name]; ok {
		return q, nil
	}
	return nil, domain.ErrQuarterNotFound
}

func (m *MockQuarterRepository) Update(setting *domain.QuarterSetting) (*domain.QuarterSetting, error) {
	if _, ok := m.Settings[setting.Quarter]; !ok {
		return nil, domain.ErrQuarterNotFound
	}
	setting.UpdatedAt = time.Now()
	m.Settings[setting.Quarter] = setting
	return setting, nil
}
