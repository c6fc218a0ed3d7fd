package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orgroles/internal/events"
	"orgroles/internal/onboarding"
	"orgroles/internal/rbac"
	"orgroles/internal/sanitize"
	"orgroles/internal/store"
)

type jobRoleInput struct {
	CompanyID    uint64 `json:"company_id"`
	DepartmentID uint64 `json:"department_id"`
	Label        string `json:"label" binding:"required"`
	Slug         string `json:"slug"`
	MappedRole   string `json:"mapped_role"`
}

func ListJobRoles(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, _ := strconv.ParseUint(c.Query("company_id"), 10, 64)
		departmentID, _ := strconv.ParseUint(c.Query("department_id"), 10, 64)
		roles, err := st.JobRoles(c.Request.Context(), companyID, departmentID, c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"job_roles": roles})
	}
}

// mappedRole falls back to the default role for unknown keys.
func mappedRole(ctx context.Context, reg rbac.Registry, raw string) (string, error) {
	key := sanitize.Key(raw)
	if key == "" {
		return onboarding.DefaultRole, nil
	}
	ok, err := reg.Exists(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return onboarding.DefaultRole, nil
	}
	return key, nil
}

func bindJobRole(c *gin.Context, reg rbac.Registry) (jobRoleInput, bool) {
	var in jobRoleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}
	if in.DepartmentID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "department required"})
		return in, false
	}
	role, err := mappedRole(c.Request.Context(), reg, in.MappedRole)
	if err != nil {
		respondError(c, err)
		return in, false
	}
	in.MappedRole = role
	return in, true
}

// CreateJobRole stores the role under its department; the company always
// follows the department.
func CreateJobRole(st *store.Store, reg rbac.Registry, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		in, ok := bindJobRole(c, reg)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		id, err := st.InsertJobRole(ctx, in.CompanyID, in.DepartmentID, in.Label, in.Slug, in.MappedRole)
		if err != nil {
			respondError(c, err)
			return
		}
		role, err := st.JobRole(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureChanged, "job_role", id, map[string]any{"op": "create", "mapped_role": role.MappedRole}))
		c.JSON(http.StatusCreated, gin.H{"job_role": role})
	}
}

func UpdateJobRole(st *store.Store, reg rbac.Registry, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		in, ok := bindJobRole(c, reg)
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := st.UpdateJobRole(ctx, id, in.CompanyID, in.DepartmentID, in.Label, in.Slug, in.MappedRole); err != nil {
			respondError(c, err)
			return
		}
		role, err := st.JobRole(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureChanged, "job_role", id, map[string]any{"op": "update", "mapped_role": role.MappedRole}))
		c.JSON(http.StatusOK, gin.H{"job_role": role})
	}
}

func DeleteJobRole(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := st.DeleteJobRole(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureDeleted, "job_role", id, nil))
		c.Status(http.StatusNoContent)
	}
}
