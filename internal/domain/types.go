package domain

// UserID is the numeric primary key of a user row. Session tokens carry it as a decimal string.
type UserID = uint64

type TokenPurpose string

const (
	PurposeEmailVerification TokenPurpose = "email_verification"
	PurposePasswordReset     TokenPurpose = "password_reset"
)

func (p TokenPurpose) Valid() bool {
	return p == PurposeEmailVerification || p == PurposePasswordReset
}
