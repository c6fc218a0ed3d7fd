package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orgroles/internal/events"
	"orgroles/internal/store"
)

type companyInput struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug"`
}

func ListCompanies(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		companies, err := st.Companies(c.Request.Context(), c.Query("q"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"companies": companies})
	}
}

func CreateCompany(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in companyInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		id, err := st.InsertCompany(ctx, in.Name, in.Slug)
		if err != nil {
			respondError(c, err)
			return
		}
		company, err := st.Company(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureChanged, "company", id, map[string]any{"op": "create", "slug": company.Slug}))
		c.JSON(http.StatusCreated, gin.H{"company": company})
	}
}

func UpdateCompany(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		var in companyInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx := c.Request.Context()
		if err := st.UpdateCompany(ctx, id, in.Name, in.Slug); err != nil {
			respondError(c, err)
			return
		}
		company, err := st.Company(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureChanged, "company", id, map[string]any{"op": "update", "slug": company.Slug}))
		c.JSON(http.StatusOK, gin.H{"company": company})
	}
}

// DeleteCompany removes the company with its departments, job roles and the
// assignments that referenced them.
func DeleteCompany(st *store.Store, ev *events.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			return
		}
		ctx := c.Request.Context()
		if err := st.DeleteCompany(ctx, id); err != nil {
			respondError(c, err)
			return
		}
		ev.Emit(ctx, source(c).Event(events.StructureDeleted, "company", id, nil))
		c.Status(http.StatusNoContent)
	}
}
