package onboarding

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"orgroles/internal/events"
	"orgroles/internal/models"
	"orgroles/internal/rbac"
	"orgroles/internal/store"
)

// DefaultRole is granted to every onboarded user.
const DefaultRole = "customer"

var ErrEmailTaken = errors.New("email already registered")

type Service struct {
	store  *store.Store
	roles  rbac.Registry
	events *events.Dispatcher
	log    *zap.Logger
}

func New(st *store.Store, roles rbac.Registry, ev *events.Dispatcher, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: st, roles: roles, events: ev, log: log}
}

// Registration is a new account with its organisation selection.
type Registration struct {
	Email    string
	Name     string
	Password string
	Selection
}

// RegistrationForm lists the options for a registration form. With exactly one
// company the company is preselected and AutoAssign is set.
func (s *Service) RegistrationForm(ctx context.Context, posted Selection) (Form, error) {
	companies, err := s.store.Companies(ctx, "")
	if err != nil {
		return Form{}, err
	}
	sel := posted
	auto := len(companies) == 1
	if auto {
		sel.CompanyID = companies[0].ID
	}
	form, err := s.form(ctx, companies, sel)
	form.AutoAssign = auto
	return form, err
}

// AccountForm lists the options around the user's current selection.
func (s *Service) AccountForm(ctx context.Context, userID uint64) (Form, error) {
	u, err := s.store.User(ctx, userID)
	if err != nil {
		return Form{}, err
	}
	companies, err := s.store.Companies(ctx, "")
	if err != nil {
		return Form{}, err
	}
	return s.form(ctx, companies, Selection{
		CompanyID:    u.CompanyID,
		DepartmentID: u.DepartmentID,
		JobRoleID:    u.JobRoleID,
	})
}

func (s *Service) form(ctx context.Context, companies []models.Company, sel Selection) (Form, error) {
	f := Form{Selected: sel, Companies: []Option{}, Departments: []Option{}, JobRoles: []Option{}}
	for _, c := range companies {
		f.Companies = append(f.Companies, Option{ID: c.ID, Name: c.Name})
	}
	if sel.CompanyID > 0 {
		depts, err := s.store.Departments(ctx, sel.CompanyID, "")
		if err != nil {
			return f, err
		}
		for _, d := range depts {
			f.Departments = append(f.Departments, Option{ID: d.ID, Name: d.Name})
		}
	}
	if sel.DepartmentID > 0 {
		roles, err := s.store.JobRoles(ctx, 0, sel.DepartmentID, "")
		if err != nil {
			return f, err
		}
		for _, r := range roles {
			f.JobRoles = append(f.JobRoles, Option{ID: r.ID, Name: r.Label})
		}
	}
	return f, nil
}

// ValidateRegistration checks a registration selection. The returned selection
// has the company filled in when it was auto assigned.
func (s *Service) ValidateRegistration(ctx context.Context, sel Selection) (Selection, error) {
	companies, err := s.store.Companies(ctx, "")
	if err != nil {
		return sel, err
	}
	auto := len(companies) == 1
	if auto {
		sel.CompanyID = companies[0].ID
	}

	var verrs ValidationErrors
	if !auto && sel.CompanyID == 0 {
		verrs.add("company_id", msgSelectCompany)
	}
	if sel.DepartmentID == 0 {
		verrs.add("department_id", msgSelectDepartment)
	}
	if sel.JobRoleID == 0 {
		verrs.add("job_role_id", msgSelectJobRole)
	}
	if err := s.checkConsistency(ctx, sel, &verrs); err != nil {
		return sel, err
	}
	return sel, verrs.orNil()
}

// ValidateAccount checks a selection submitted from the account page or the
// admin user screen. An empty selection is valid.
func (s *Service) ValidateAccount(ctx context.Context, sel Selection) error {
	var verrs ValidationErrors
	if sel.CompanyID > 0 && sel.DepartmentID == 0 {
		verrs.add("department_id", msgSelectDepartment)
	}
	if sel.CompanyID > 0 && sel.DepartmentID > 0 && sel.JobRoleID == 0 {
		verrs.add("job_role_id", msgSelectJobRole)
	}
	if err := s.checkConsistency(ctx, sel, &verrs); err != nil {
		return err
	}
	return verrs.orNil()
}

func (s *Service) checkConsistency(ctx context.Context, sel Selection, verrs *ValidationErrors) error {
	if sel.CompanyID > 0 && sel.DepartmentID > 0 {
		ok, err := s.store.DepartmentBelongsToCompany(ctx, sel.DepartmentID, sel.CompanyID)
		if err != nil {
			return err
		}
		if !ok {
			verrs.add("department_id", msgDepartmentCompany)
		}
	}
	if sel.DepartmentID > 0 && sel.JobRoleID > 0 {
		ok, err := s.store.JobRoleBelongsToDepartment(ctx, sel.JobRoleID, sel.DepartmentID)
		if err != nil {
			return err
		}
		if !ok {
			verrs.add("job_role_id", msgJobRoleDepartment)
		}
	}
	return nil
}

// Register validates the selection, creates the account and onboards it.
func (s *Service) Register(ctx context.Context, in Registration, src events.Source) (*models.User, error) {
	sel, err := s.ValidateRegistration(ctx, in.Selection)
	if err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.store.UserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := &models.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Status:       models.UserActive,
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	if src.UserID == 0 {
		src.UserID = u.ID
	}

	if err := s.completeRegistration(ctx, u.ID, sel, src); err != nil {
		return u, err
	}
	u.CompanyID, u.DepartmentID, u.JobRoleID = sel.CompanyID, sel.DepartmentID, sel.JobRoleID
	return u, nil
}

func (s *Service) completeRegistration(ctx context.Context, userID uint64, sel Selection, src events.Source) error {
	if !sel.Complete() {
		return nil
	}
	ok, err := s.store.DepartmentBelongsToCompany(ctx, sel.DepartmentID, sel.CompanyID)
	if err != nil {
		return err
	}
	if !ok {
		d, err := s.store.Department(ctx, sel.DepartmentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		sel.CompanyID = d.CompanyID
	}

	if err := s.apply(ctx, userID, sel, src); err != nil {
		return err
	}
	s.emit(ctx, src.Event(events.OnboardingCompleted, "user", userID, selectionData(sel)))
	return nil
}

// UpdateAccount validates and stores a selection for userID. Incomplete or
// inconsistent selections that pass validation are not saved; saved reports
// whether anything was written.
func (s *Service) UpdateAccount(ctx context.Context, userID uint64, sel Selection, src events.Source) (saved bool, err error) {
	if err := s.ValidateAccount(ctx, sel); err != nil {
		return false, err
	}
	if !sel.Complete() {
		return false, nil
	}
	ok, err := s.store.DepartmentBelongsToCompany(ctx, sel.DepartmentID, sel.CompanyID)
	if err != nil || !ok {
		return false, err
	}
	if _, err := s.store.User(ctx, userID); err != nil {
		return false, err
	}

	if err := s.apply(ctx, userID, sel, src); err != nil {
		return false, err
	}
	s.emit(ctx, src.Event(events.PrimaryContextChanged, "user", userID, selectionData(sel)))
	return true, nil
}

// apply stores the selection on the user, records it as the primary
// assignment and grants the default and mapped access roles.
func (s *Service) apply(ctx context.Context, userID uint64, sel Selection, src events.Source) error {
	if err := s.store.SetUserOrganization(ctx, userID, sel.CompanyID, sel.DepartmentID, sel.JobRoleID); err != nil {
		return err
	}
	if err := s.store.InsertUserAssignment(ctx, userID, sel.CompanyID, sel.DepartmentID, sel.JobRoleID, true); err != nil {
		return err
	}

	jr, err := s.store.JobRole(ctx, sel.JobRoleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.roles.Grant(ctx, userID, DefaultRole); err != nil {
		return errors.Wrap(err, "grant default role")
	}
	if jr.MappedRole != "" {
		if err := s.roles.Grant(ctx, userID, jr.MappedRole); err != nil {
			return errors.Wrap(err, "grant mapped role")
		}
		s.emit(ctx, src.Event(events.UserRoleMapped, "user", userID, map[string]any{"role": jr.MappedRole}))
	}
	s.log.Info("organisation context saved",
		zap.Uint64("user_id", userID),
		zap.Uint64("company_id", sel.CompanyID),
		zap.Uint64("department_id", sel.DepartmentID),
		zap.Uint64("job_role_id", sel.JobRoleID),
	)
	return nil
}

func (s *Service) emit(ctx context.Context, ev events.Event) {
	if s.events != nil {
		s.events.Emit(ctx, ev)
	}
}

func selectionData(sel Selection) map[string]any {
	return map[string]any{
		"company_id":    sel.CompanyID,
		"department_id": sel.DepartmentID,
		"job_role_id":   sel.JobRoleID,
	}
}
