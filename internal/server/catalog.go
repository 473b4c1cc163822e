package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) listBranches(c *gin.Context) {
	branches, err := s.branches.ListBranches(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

func (s *Server) listDepartments(c *gin.Context) {
	departments, err := s.branches.ListDepartments(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"departments": departments})
}

func (s *Server) listItems(c *gin.Context) {
	items, err := s.catalog.ListItems(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// listBranchPrices returns the active price rows for one branch, resolved
// by branch code.
func (s *Server) listBranchPrices(c *gin.Context) {
	branch, err := s.branches.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	prices, err := s.catalog.ListPrices(c.Request.Context(), branch.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"branch": branch,
		"prices": prices,
	})
}
