// Package orgcsv imports and exports the company / department / job role
// structure as delimited text or XLSX workbooks.
package orgcsv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// Column names of the structure file, in export order.
const (
	ColCompany           = "company"
	ColCompanySlug       = "company_slug"
	ColDepartment        = "department"
	ColDepartmentSlug    = "department_slug"
	ColJobRole           = "job_role"
	ColJobRoleSlug       = "job_role_slug"
	ColMappedRole        = "mapped_role"
	ColMappedRoleDisplay = "mapped_role_display"
	ColCapabilityJSON    = "capability_json"
	ColNotes             = "notes"
)

var Columns = []string{
	ColCompany, ColCompanySlug,
	ColDepartment, ColDepartmentSlug,
	ColJobRole, ColJobRoleSlug,
	ColMappedRole, ColMappedRoleDisplay,
	ColCapabilityJSON, ColNotes,
}

var requiredColumns = []string{ColCompany, ColDepartment, ColJobRole}

// Older exports used these names.
var columnAliases = map[string]string{
	"wp_role":         ColMappedRole,
	"wp_role_display": ColMappedRoleDisplay,
	"caps_json":       ColCapabilityJSON,
}

var ErrEmptyFile = errors.New("empty file")

type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("header missing required column: %s", e.Column)
}

// RecordReader yields raw records. *csv.Reader satisfies it.
type RecordReader interface {
	Read() ([]string, error)
}

// NewCSVReader returns a reader tolerant of ragged rows.
func NewCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return cr
}

type Row struct {
	Company           string
	CompanySlug       string
	Department        string
	DepartmentSlug    string
	JobRole           string
	JobRoleSlug       string
	MappedRole        string
	MappedRoleDisplay string
	CapabilityJSON    string
	Notes             string
}

// Blank reports whether the row carries none of the fields that drive an import.
func (r Row) Blank() bool {
	return r.Company == "" && r.Department == "" && r.JobRole == "" && r.MappedRole == ""
}

// RowReader maps records onto Row by header name.
type RowReader struct {
	src   RecordReader
	index map[string]int
}

// NewRowReader consumes the header record. It fails with ErrEmptyFile when there
// is no header and with *MissingColumnError when a required column is absent.
func NewRowReader(src RecordReader) (*RowReader, error) {
	header, err := src.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if alias, ok := columnAliases[name]; ok {
			name = alias
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, &MissingColumnError{Column: col}
		}
	}
	return &RowReader{src: src, index: index}, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.TrimSpace(h))
}

// Next returns the next row, or io.EOF after the last one. Values are trimmed.
func (r *RowReader) Next() (Row, error) {
	rec, err := r.src.Read()
	if err != nil {
		return Row{}, err
	}
	return Row{
		Company:           r.col(rec, ColCompany),
		CompanySlug:       r.col(rec, ColCompanySlug),
		Department:        r.col(rec, ColDepartment),
		DepartmentSlug:    r.col(rec, ColDepartmentSlug),
		JobRole:           r.col(rec, ColJobRole),
		JobRoleSlug:       r.col(rec, ColJobRoleSlug),
		MappedRole:        r.col(rec, ColMappedRole),
		MappedRoleDisplay: r.col(rec, ColMappedRoleDisplay),
		CapabilityJSON:    r.col(rec, ColCapabilityJSON),
		Notes:             r.col(rec, ColNotes),
	}, nil
}

func (r *RowReader) col(rec []string, name string) string {
	i, ok := r.index[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// sliceRecords serves records that are already in memory.
type sliceRecords struct {
	rows [][]string
	next int
}

func (s *sliceRecords) Read() ([]string, error) {
	if s.next >= len(s.rows) {
		return nil, io.EOF
	}
	rec := s.rows[s.next]
	s.next++
	return rec, nil
}
