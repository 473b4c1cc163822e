package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	auditdomain "github.com/coopfoods/ajomart/internal/audit/domain"
	"github.com/coopfoods/ajomart/pkg/db/pagination"
)

type listAuditLogsQuery struct {
	OrderID string `form:"order_id"`
	Action  string `form:"action"`
	pagination.Pagination
}

func (s *Server) listAuditLogs(c *gin.Context) {
	var query listAuditLogsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	filter := auditdomain.ListFilter{Action: query.Action}
	if query.OrderID != "" {
		parsed, err := strconv.ParseInt(query.OrderID, 10, 64)
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		filter.OrderID = snowflake.ID(parsed)
	}

	entries, pageInfo, err := s.audit.List(c.Request.Context(), filter, query.Pagination)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"audit_logs": entries,
		"page_info":  pageInfo,
	})
}
