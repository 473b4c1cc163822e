package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
)

// actorCode resolves the authenticated caller's member code for audit
// attribution.
func (s *Server) actorCode(c *gin.Context) (string, error) {
	session, ok := SessionFromContext(c)
	if !ok {
		return "", ErrUnauthorized
	}
	member, err := s.members.GetByID(c.Request.Context(), session.MemberID)
	if err != nil {
		return "", err
	}
	return member.MemberCode, nil
}

type postOrderPayload struct {
	Note string `json:"note"`
}

func (s *Server) postOrder(c *gin.Context) {
	actor, err := s.actorCode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var payload postOrderPayload
	_ = c.ShouldBindJSON(&payload)

	if err := s.orders.Post(c.Request.Context(), id, actor, payload.Note); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type cancelOrderPayload struct {
	Reason string `json:"reason" binding:"required"`
}

func (s *Server) cancelOrder(c *gin.Context) {
	actor, err := s.actorCode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var payload cancelOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orders.Cancel(c.Request.Context(), id, actor, payload.Reason); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) deliverOrder(c *gin.Context) {
	actor, err := s.actorCode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orders.Deliver(c.Request.Context(), id, actor); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type editLinesPayload struct {
	Lines []struct {
		SKU string `json:"sku" binding:"required"`
		Qty int64  `json:"qty" binding:"required"`
	} `json:"lines" binding:"required"`
}

func (s *Server) editOrderLines(c *gin.Context) {
	actor, err := s.actorCode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var payload editLinesPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	lines := make([]catalogdomain.LineInput, 0, len(payload.Lines))
	for _, line := range payload.Lines {
		lines = append(lines, catalogdomain.LineInput{SKU: line.SKU, Qty: line.Qty})
	}

	total, err := s.orders.EditLines(c.Request.Context(), id, actor, lines)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "total": total})
}

func (s *Server) deleteOrder(c *gin.Context) {
	actor, err := s.actorCode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orders.Delete(c.Request.Context(), id, actor); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type bulkPostPayload struct {
	OrderIDs []int64 `json:"order_ids" binding:"required"`
}

// bulkPostOrders posts each listed order independently; one failure never
// rolls back the others.
func (s *Server) bulkPostOrders(c *gin.Context) {
	actor, err := s.actorCode(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var payload bulkPostPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if len(payload.OrderIDs) == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ids := make([]snowflake.ID, 0, len(payload.OrderIDs))
	for _, raw := range payload.OrderIDs {
		ids = append(ids, snowflake.ID(raw))
	}

	results := s.orders.BulkPost(c.Request.Context(), ids, actor)
	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (s *Server) listMemberOrders(c *gin.Context) {
	member, err := s.members.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	orders, err := s.orders.ListByMember(c.Request.Context(), member.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) memberEligibility(c *gin.Context) {
	member, err := s.members.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	snapshot, err := s.eligibility.ComputeSnapshot(c.Request.Context(), member)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) listMembers(c *gin.Context) {
	var branchID snowflake.ID
	if code := c.Query("branch_code"); code != "" {
		branch, err := s.branches.GetByCode(c.Request.Context(), code)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		branchID = branch.ID
	}

	members, err := s.members.List(c.Request.Context(), branchID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

type upsertPricePayload struct {
	SKU       string `json:"sku" binding:"required"`
	CycleID   int64  `json:"cycle_id" binding:"required"`
	UnitPrice int64  `json:"unit_price" binding:"required"`
}

func (s *Server) upsertBranchPrice(c *gin.Context) {
	branch, err := s.branches.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var payload upsertPricePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	price, err := s.catalog.UpsertPrice(c.Request.Context(), catalogdomain.UpsertPriceRequest{
		BranchID:  branch.ID,
		SKU:       payload.SKU,
		CycleID:   snowflake.ID(payload.CycleID),
		UnitPrice: payload.UnitPrice,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, price)
}

type setPINPayload struct {
	PIN string `json:"pin" binding:"required"`
}

// setMemberPIN lets an admin set or reset a member's PIN. Member records
// themselves are owned by the external membership system; the PIN hash is
// the one field this portal writes.
func (s *Server) setMemberPIN(c *gin.Context) {
	var payload setPINPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.auth.SetPIN(c.Request.Context(), c.Param("code"), payload.PIN); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
