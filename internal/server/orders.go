package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/coopfoods/ajomart/internal/auth/domain"
	catalogdomain "github.com/coopfoods/ajomart/internal/catalog/domain"
	orderdomain "github.com/coopfoods/ajomart/internal/order/domain"
)

type placeOrderPayload struct {
	MemberCode         string `json:"member_code"`
	DeliveryBranchCode string `json:"delivery_branch_code" binding:"required"`
	DepartmentName     string `json:"department_name" binding:"required"`
	PaymentOption      string `json:"payment_option" binding:"required"`
	Lines              []struct {
		SKU string `json:"sku" binding:"required"`
		Qty int64  `json:"qty" binding:"required"`
	} `json:"lines" binding:"required"`
}

// placeOrder accepts an order for the authenticated member. Only admins may
// place on behalf of another member.
func (s *Server) placeOrder(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var payload placeOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	caller, err := s.members.GetByID(c.Request.Context(), session.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	memberCode := payload.MemberCode
	if memberCode == "" {
		memberCode = caller.MemberCode
	}
	if memberCode != caller.MemberCode && !session.HasRole(authdomain.RoleAdmin) {
		AbortWithError(c, ErrForbidden)
		return
	}

	req := orderdomain.PlaceOrderRequest{
		MemberCode:         memberCode,
		DeliveryBranchCode: payload.DeliveryBranchCode,
		DepartmentName:     payload.DepartmentName,
		PaymentOption:      payload.PaymentOption,
	}
	for _, line := range payload.Lines {
		req.Lines = append(req.Lines, catalogdomain.LineInput{SKU: line.SKU, Qty: line.Qty})
	}

	result, err := s.orders.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ordersPlacedTotal.WithLabelValues(result.PaymentOption).Inc()
	c.JSON(http.StatusCreated, result)
}

func (s *Server) getOrder(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	id, err := parseID(c.Param("id"))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.orders.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if order.MemberID != session.MemberID && !session.HasRole(authdomain.RoleAdmin) {
		// Not-found rather than forbidden: do not confirm the order exists.
		AbortWithError(c, orderdomain.ErrOrderNotFound)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (s *Server) listMyOrders(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orders, err := s.orders.ListByMember(c.Request.Context(), session.MemberID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// myEligibility recomputes the caller's eligibility snapshot on demand.
// Always a fresh read; the result is never cached.
func (s *Server) myEligibility(c *gin.Context) {
	session, ok := SessionFromContext(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	member, err := s.members.GetByID(c.Request.Context(), session.MemberID)
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

func parseID(raw string) (snowflake.ID, error) {
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return snowflake.ID(parsed), nil
}
