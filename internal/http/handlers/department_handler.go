package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"orgroles/internal/events"
	"orgroles/internal/store"
)

type departmentInput struct {
	CompanyID uint64 `json:"company_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Slug      string `json:"slug"`
}

func ListDepartments(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		companyID, _ := strconv.ParseUint(c.Query("company_id"), 10, 64)
		depts, err := st.Departments(c.Request.Context(), companyID, c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"departments": depts})
	}
}

func CreateDepartment(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in departmentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		id, err := st.InsertDepartment(ctx, in.CompanyID, in.Name, in.Slug)
		if err != nil {
			respondError(c, err)
			return
		}
		dept, err := st.Department(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureChanged, "department", id, map[string]any{"op": "create", "company_id": dept.CompanyID}))
		c.JSON(http.StatusCreated, gin.H{"department": dept})
	}
}

// UpdateDepartment also moves the department's job roles when the company changes.
func UpdateDepartment(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var in departmentInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		if err := st.UpdateDepartment(ctx, id, in.CompanyID, in.Name, in.Slug); err != nil {
			respondError(c, err)
			return
		}
		dept, err := st.Department(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureChanged, "department", id, map[string]any{"op": "update", "company_id": dept.CompanyID}))
		c.JSON(http.StatusOK, gin.H{"department": dept})
	}
}

func DeleteDepartment(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := st.DeleteDepartment(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureDeleted, "department", id, nil))
		c.Status(http.StatusNoContent)
	}
}
