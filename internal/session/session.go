// Package session models the per-terminal UI state: who is operating the
// till and which screen they are on. All transitions go through Reduce.
package session

import (
	"errors"
	"fmt"

	"shopos/backend/internal/domain"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrIncorrectPIN = errors.New("incorrect pin")
)

type View string

const (
	ViewPOS       View = "pos"
	ViewDebtors   View = "debtors"
	ViewReports   View = "reports"
	ViewInventory View = "inventory"
)

func ParseView(raw string) (View, error) {
	switch v := View(raw); v {
	case ViewPOS, ViewDebtors, ViewReports, ViewInventory:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q", raw)
}

type Permission string

const (
	PermSell            Permission = "sell"
	PermRecordPayment   Permission = "record_payment"
	PermManageDebtors   Permission = "manage_debtors"
	PermImportCustomers Permission = "import_customers"
	PermEditInventory   Permission = "edit_inventory"
	PermAddProduct      Permission = "add_product"
	PermViewReports     Permission = "view_reports"
)

var privileged = map[Permission]bool{
	PermEditInventory: true,
	PermAddProduct:    true,
	PermViewReports:   true,
}

// Authorize is the single gate for privileged operations.
func Authorize(role domain.Role, perm Permission) error {
	switch role {
	case domain.RoleSuperAdmin:
		return nil
	case domain.RoleAdmin:
		if privileged[perm] {
			return fmt.Errorf("%w: %s requires super admin", ErrForbidden, perm)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown role %q", ErrForbidden, role)
}

type State struct {
	Role domain.Role `json:"role"`
	View View        `json:"view"`
}

func Initial() State {
	return State{Role: domain.RoleAdmin, View: ViewPOS}
}

func VisibleViews(role domain.Role) []View {
	views := []View{ViewPOS, ViewDebtors, ViewInventory}
	if Authorize(role, PermViewReports) == nil {
		views = append(views, ViewReports)
	}
	return views
}

func canOpen(role domain.Role, view View) bool {
	for _, v := range VisibleViews(role) {
		if v == view {
			return true
		}
	}
	return false
}

type Action interface {
	apply(State) (State, error)
}

// Elevate carries the outcome of the PIN check; the comparison itself lives
// with whoever holds the hashed secret.
type Elevate struct {
	PINValid bool
}

type Demote struct{}

type Navigate struct {
	View View
}

func (a Elevate) apply(s State) (State, error) {
	if !a.PINValid {
		return s, ErrIncorrectPIN
	}
	s.Role = domain.RoleSuperAdmin
	return s, nil
}

func (Demote) apply(s State) (State, error) {
	s.Role = domain.RoleAdmin
	if !canOpen(s.Role, s.View) {
		s.View = ViewPOS
	}
	return s, nil
}

func (a Navigate) apply(s State) (State, error) {
	if !canOpen(s.Role, a.View) {
		return s, fmt.Errorf("%w: %s view requires super admin", ErrForbidden, a.View)
	}
	s.View = a.View
	return s, nil
}

// Reduce applies action to state. On error the returned state equals the input.
func Reduce(state State, action Action) (State, error) {
	next, err := action.apply(state)
	if err != nil {
		return state, err
	}
	return next, nil
}
