// Package onboarding captures a user's company, department and job role at
// registration, on the account page and from the admin user screen.
package onboarding

import (
	"strings"
)

// Selection is a user's organisation context. Zero means "not selected".
type Selection struct {
	CompanyID    uint64 `json:"company_id" form:"company_id"`
	DepartmentID uint64 `json:"department_id" form:"department_id"`
	JobRoleID    uint64 `json:"job_role_id" form:"job_role_id"`
}

func (s Selection) Complete() bool {
	return s.CompanyID > 0 && s.DepartmentID > 0 && s.JobRoleID > 0
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors collects every problem of a submitted selection.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, " ")
}

func (v *ValidationErrors) add(field, msg string) {
	*v = append(*v, FieldError{Field: field, Message: msg})
}

func (v ValidationErrors) orNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

const (
	msgSelectCompany     = "Please select a company."
	msgSelectDepartment  = "Please select a department."
	msgSelectJobRole     = "Please select a job role."
	msgDepartmentCompany = "Selected Department does not belong to the chosen Company."
	msgJobRoleDepartment = "Selected Job Role does not belong to the chosen Department."
)

// Option is one entry of a dropdown.
type Option struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Form is what a client needs to render the three dependent selects.
type Form struct {
	Companies   []Option  `json:"companies"`
	Departments []Option  `json:"departments"`
	JobRoles    []Option  `json:"job_roles"`
	AutoAssign  bool      `json:"auto_assign"`
	Selected    Selection `json:"selected"`
}
