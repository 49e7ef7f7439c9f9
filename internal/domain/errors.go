package domain

import "errors"

// Kind classifies an error for transport mapping.
type Kind int

const (
	KindValidation Kind = iota + 1 // 422
	KindUnauthorized               // 401
	KindForbidden                  // 403
	KindNotFound                   // 404
	KindConflict                   // 400
	KindInternal                   // 500
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause while keeping sentinel identity intact for errors.Is.
func (e *Error) Wrap(cause error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, Err: cause}
}

// Is lets wrapped copies of a sentinel match the sentinel itself.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

// Internal wraps an unexpected failure, preserving the cause for logging.
func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: cause}
}

// KindOf walks the error chain and reports the outermost Kind, defaulting to
// KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

var (
	// Identical message whether the user is absent or the password is wrong,
	// so login failures cannot be used to enumerate identifiers.
	ErrInvalidCredentials = NewError(KindUnauthorized, "invalid credentials")

	ErrInvalidToken = NewError(KindUnauthorized, "invalid or expired token")
	ErrTokenRevoked = NewError(KindUnauthorized, "token has been revoked")
	ErrInvalidOtp   = NewError(KindUnauthorized, "invalid or expired OTP")

	ErrDuplicateEmail = NewError(KindConflict, "email already registered")
	ErrDuplicatePhone = NewError(KindConflict, "phone number already registered")
	ErrNoDefaultRole  = NewError(KindInternal, "default role not configured")

	ErrUserNotFound       = NewError(KindNotFound, "user not found")
	ErrRoleNotFound       = NewError(KindNotFound, "role not found")
	ErrPrivilegeNotFound  = NewError(KindNotFound, "privilege not found")
	ErrAssignmentNotFound = NewError(KindNotFound, "assignment not found")

	ErrSystemRoleImmutable     = NewError(KindForbidden, "system roles cannot be modified or deleted")
	ErrUserMissingRole         = NewError(KindForbidden, "user does not have this role")
	ErrRoleIsDefaultForUsers   = NewError(KindConflict, "role is set as default for some users")
	ErrDefaultRoleRemoval      = NewError(KindConflict, "cannot remove user's default role")
	ErrDuplicateRoleName       = NewError(KindConflict, "role with this name already exists")
	ErrDuplicatePrivilegeName  = NewError(KindConflict, "privilege with this name already exists")
	ErrRoleAlreadyAssigned     = NewError(KindConflict, "role already assigned to user")
	ErrPrivilegeAlreadyGranted = NewError(KindConflict, "privilege already assigned to role")

	ErrOtpDailyLimit     = NewError(KindConflict, "daily OTP limit reached")
	ErrInvalidOtpPurpose = NewError(KindValidation, "invalid OTP purpose")
	ErrInvalidAction     = NewError(KindValidation, "invalid action")

	ErrLogoutFailed = NewError(KindInternal, "failed to logout")
)
