package entity

// Kind identifies the application pipeline an application belongs to.
type Kind string

const (
	KindLoan       Kind = "LOAN"
	KindDeposit    Kind = "DEPOSIT"
	KindWithdrawal Kind = "WITHDRAWAL"
)

// IsValid returns true if the kind is one of the known pipelines.
func (k Kind) IsValid() bool {
	switch k {
	case KindLoan, KindDeposit, KindWithdrawal:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// LoanType distinguishes loan sub-types with different pricing.
type LoanType string

const (
	// LoanTypeCash is a plain cash loan priced with flat-rate interest.
	LoanTypeCash LoanType = "CASH"

	// LoanTypeGoodsOnline is the goods-via-online-shop sub-type; a shop
	// margin is applied on top of the interest portion.
	LoanTypeGoodsOnline LoanType = "GOODS_ONLINE"
)

// IsValid returns true if the loan type is known.
func (t LoanType) IsValid() bool {
	return t == LoanTypeCash || t == LoanTypeGoodsOnline
}

// Role identifies a fixed organizational role in the cooperative.
type Role string

const (
	RoleDivisiSimpanPinjam Role = "DIVISI_SIMPAN_PINJAM"
	RoleKetua              Role = "KETUA"
	RolePengawas           Role = "PENGAWAS"
	RoleShopkeeper         Role = "SHOPKEEPER"
	RoleAnggota            Role = "ANGGOTA"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// Step identifies a position in an approval chain awaiting an action.
type Step string

const (
	StepDSPReview      Step = "DSP_REVIEW"
	StepKetuaReview    Step = "KETUA_REVIEW"
	StepPengawasReview Step = "PENGAWAS_REVIEW"
	StepDisbursement   Step = "DISBURSEMENT"
	StepAuthorization  Step = "AUTHORIZATION"
)

// String returns the string representation of the step.
func (s Step) String() string {
	return string(s)
}

// IsReview returns true for the three reviewer-decision steps.
func (s Step) IsReview() bool {
	switch s {
	case StepDSPReview, StepKetuaReview, StepPengawasReview:
		return true
	default:
		return false
	}
}

// Status is the single source of truth for workflow position.
type Status string

const (
	StatusDraft                       Status = "DRAFT"
	StatusUnderReviewDSP              Status = "UNDER_REVIEW_DSP"
	StatusUnderReviewKetua            Status = "UNDER_REVIEW_KETUA"
	StatusUnderReviewPengawas         Status = "UNDER_REVIEW_PENGAWAS"
	StatusApprovedPendingDisbursement Status = "APPROVED_PENDING_DISBURSEMENT"
	StatusPendingAuthorization        Status = "PENDING_AUTHORIZATION"
	StatusDisbursed                   Status = "DISBURSED"
	StatusActive                      Status = "ACTIVE"
	StatusCompleted                   Status = "COMPLETED"
	StatusRejected                    Status = "REJECTED"
	StatusCancelled                   Status = "CANCELLED"
)

var validStatuses = map[Status]bool{
	StatusDraft:                       true,
	StatusUnderReviewDSP:              true,
	StatusUnderReviewKetua:            true,
	StatusUnderReviewPengawas:         true,
	StatusApprovedPendingDisbursement: true,
	StatusPendingAuthorization:        true,
	StatusDisbursed:                   true,
	StatusActive:                      true,
	StatusCompleted:                   true,
	StatusRejected:                    true,
	StatusCancelled:                   true,
}

var terminalStatuses = map[Status]bool{
	StatusDisbursed: true,
	StatusActive:    true,
	StatusCompleted: true,
	StatusRejected:  true,
	StatusCancelled: true,
}

// IsValid returns true if the status is a known workflow status.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsUnderReview returns true while a reviewer decision is awaited.
func (s Status) IsUnderReview() bool {
	switch s {
	case StatusUnderReviewDSP, StatusUnderReviewKetua, StatusUnderReviewPengawas:
		return true
	default:
		return false
	}
}

// IsCancellable returns true while the applicant may still withdraw the
// application (draft or any review step, before disbursement begins).
func (s Status) IsCancellable() bool {
	return s == StatusDraft || s.IsUnderReview()
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Decision is a reviewer's verdict recorded in the approval history.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
	DecisionRevise  Decision = "REVISE"
)

// IsValid returns true if the decision is one of the known verdicts.
func (d Decision) IsValid() bool {
	switch d {
	case DecisionApprove, DecisionReject, DecisionRevise:
		return true
	default:
		return false
	}
}

// String returns the string representation of the decision.
func (d Decision) String() string {
	return string(d)
}
