package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

// branchSummaryReport serves the cached per-branch order aggregate. The
// cache holds display data only; eligibility never reads from it.
func (s *Server) branchSummaryReport(c *gin.Context) {
	branch, err := s.branches.GetByCode(c.Request.Context(), c.Query("branch_code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var cycleID snowflake.ID
	if raw := c.Query("cycle_id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		cycleID = snowflake.ID(parsed)
	}

	summary, err := s.reports.BranchSummary(c.Request.Context(), branch.ID, cycleID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
