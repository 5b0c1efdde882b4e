// Package operator contains the admin operator account model. Operators
// are the attribution source for conduct records (operator_name) and
// appeal decisions (processed_by). Session handling lives outside this
// module; only account storage and password verification are modeled here.
package operator

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role defines what an operator account is allowed to do.
type Role string

const (
	// RoleAdmin can manage records, appeals, and other operators.
	RoleAdmin Role = "admin"
	// RoleReviewer can decide appeals but not create records.
	RoleReviewer Role = "reviewer"
)

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleReviewer
}

// Operator is an admin account.
type Operator struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

var (
	// ErrInvalidUsername is returned for usernames outside 2-50 chars.
	ErrInvalidUsername = errors.New("invalid username: must be 2-50 chars without whitespace")

	// ErrWeakPassword is returned for passwords shorter than 8 chars.
	ErrWeakPassword = errors.New("password must be at least 8 chars")

	// ErrOperatorNotFound is returned when an operator does not exist.
	ErrOperatorNotFound = errors.New("operator not found")

	// ErrOperatorAlreadyExists is returned on duplicate usernames.
	ErrOperatorAlreadyExists = errors.New("operator already exists")

	// ErrWrongPassword is returned when password verification fails.
	ErrWrongPassword = errors.New("wrong password")
)

// NewOperatorParams holds parameters for creating an operator.
type NewOperatorParams struct {
	ID          string
	Username    string
	DisplayName string
	Password    string
	Role        Role
}

// NewOperator creates an operator with a bcrypt-hashed password.
func NewOperator(params NewOperatorParams) (*Operator, error) {
	if params.ID == "" {
		return nil, errors.New("operator id is required")
	}

	username := strings.TrimSpace(params.Username)
	if len(username) < 2 || len(username) > 50 || strings.ContainsAny(username, " \t\n\r") {
		return nil, ErrInvalidUsername
	}

	if len(params.Password) < 8 {
		return nil, ErrWeakPassword
	}

	role := params.Role
	if !role.IsValid() {
		role = RoleReviewer
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Operator{
		ID:           params.ID,
		Username:     username,
		DisplayName:  strings.TrimSpace(params.DisplayName),
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (o *Operator) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(o.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

// SetPassword replaces the stored hash.
func (o *Operator) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	o.PasswordHash = string(hash)
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// CanDecideAppeals reports whether the operator may adjudicate appeals.
func (o *Operator) CanDecideAppeals() bool {
	return o.Role == RoleAdmin || o.Role == RoleReviewer
}

// CanManageRecords reports whether the operator may create or delete records.
func (o *Operator) CanManageRecords() bool {
	return o.Role == RoleAdmin
}

// Repository defines operator account storage.
type Repository interface {
	// Create stores a new operator.
	// Returns ErrOperatorAlreadyExists on duplicate usernames.
	Create(ctx context.Context, op *Operator) error

	// GetByUsername returns an operator by username.
	// Returns ErrOperatorNotFound if absent.
	GetByUsername(ctx context.Context, username string) (*Operator, error)

	// Update stores changed fields (display name, password hash, role).
	Update(ctx context.Context, op *Operator) error
}
