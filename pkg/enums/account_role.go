package enums

import (
	"fmt"
	"strings"
)

// AccountRole tags a confirmed account with its platform role.
type AccountRole string

const (
	AccountRoleOwner    AccountRole = "Owner"
	AccountRoleCustomer AccountRole = "Customer"
	AccountRoleStaff    AccountRole = "Staff"
)

// IsValid reports whether the role belongs to the closed set.
func (r AccountRole) IsValid() bool {
	switch r {
	case AccountRoleOwner, AccountRoleCustomer, AccountRoleStaff:
		return true
	}
	return false
}

func (r AccountRole) String() string {
	return string(r)
}

// ParseAccountRole resolves a case-insensitive role name.
func ParseAccountRole(value string) (AccountRole, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "owner":
		return AccountRoleOwner, nil
	case "customer":
		return AccountRoleCustomer, nil
	case "staff":
		return AccountRoleStaff, nil
	}
	return "", fmt.Errorf("unknown account role %q", value)
}
