package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"orgroles/internal/auth"
	"orgroles/internal/store"
)

type departmentItem struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type jobRoleItem struct {
	ID    uint64 `json:"id"`
	Label string `json:"label"`
}

func lookupSuccess(c *gin.Context, data any) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func lookupAllowed(c *gin.Context, nonces *auth.Nonces) bool {
	if nonces.Verify(formValue(c, "nonce"), auth.ActionLookup, auth.Current(c).UserID) {
		return true
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusForbidden, gin.H{"success": false, "data": gin.H{"message": "invalid token"}})
	return false
}

// LookupToken issues the token the dropdown endpoints expect in "nonce".
func LookupToken(nonces *auth.Nonces) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := nonces.Issue(auth.ActionLookup, auth.Current(c).UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, gin.H{"nonce": tok})
	}
}

// DepartmentsForCompany lists the departments of company_id. Unknown or
// invalid ids give an empty list.
func DepartmentsForCompany(st *store.Store, nonces *auth.Nonces) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lookupAllowed(c, nonces) {
			return
		}
		out := []departmentItem{}
		companyID := formUint(c, "company_id")
		if companyID == 0 {
			lookupSuccess(c, out)
			return
		}

		depts, err := st.Departments(c.Request.Context(), companyID, "")
		if err != nil {
			respondError(c, err)
			return
		}
		seen := map[uint64]bool{}
		for _, d := range depts {
			if seen[d.ID] {
				continue
			}
			seen[d.ID] = true
			out = append(out, departmentItem{ID: d.ID, Name: d.Name})
		}
		lookupSuccess(c, out)
	}
}

// JobRolesForDepartment lists the job roles of department_id. A missing
// department gives an empty list.
func JobRolesForDepartment(st *store.Store, nonces *auth.Nonces) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !lookupAllowed(c, nonces) {
			return
		}
		out := []jobRoleItem{}
		deptID := formUint(c, "department_id")
		if deptID == 0 {
			lookupSuccess(c, out)
			return
		}
		ctx := c.Request.Context()
		if _, err := st.Department(ctx, deptID); errors.Is(err, store.ErrNotFound) {
			lookupSuccess(c, out)
			return
		} else if err != nil {
			respondError(c, err)
			return
		}

		roles, err := st.JobRoles(ctx, 0, deptID, "")
		if err != nil {
			respondError(c, err)
			return
		}
		seen := map[uint64]bool{}
		for _, r := range roles {
			if seen[r.ID] {
				continue
			}
			seen[r.ID] = true
			out = append(out, jobRoleItem{ID: r.ID, Label: r.Label})
		}
		lookupSuccess(c, out)
	}
}
