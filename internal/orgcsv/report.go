package orgcsv

import "fmt"

type Counts struct {
	Companies   int `json:"companies"`
	Departments int `json:"departments"`
	JobRoles    int `json:"job_roles"`
	AccessRoles int `json:"access_roles"`
}

// Report is the outcome of one import run.
type Report struct {
	Rows    int    `json:"rows"`
	Created Counts `json:"created"`
	Reused  Counts `json:"reused"`
	Errors  int    `json:"errors"`
}

func (r Report) String() string {
	return fmt.Sprintf(
		"Import complete. Rows: %d. Created → companies %d, departments %d, job roles %d, access roles %d. "+
			"Reused → companies %d, departments %d, job roles %d, access roles %d. Errors: %d.",
		r.Rows,
		r.Created.Companies, r.Created.Departments, r.Created.JobRoles, r.Created.AccessRoles,
		r.Reused.Companies, r.Reused.Departments, r.Reused.JobRoles, r.Reused.AccessRoles,
		r.Errors,
	)
}

// Notice is the severity shown to the admin.
func (r Report) Notice() string {
	if r.Errors > 0 {
		return "warning"
	}
	return "success"
}
