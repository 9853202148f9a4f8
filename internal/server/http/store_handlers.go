package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/internal/common"
	"github.com/storerate/storerate/internal/server/authz"
	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/stores"
	"github.com/storerate/storerate/internal/server/services"
)

type createStoreRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	OwnerID string `json:"owner_id"`
}

func (s *Server) handleCreateStore(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	store, err := s.stores.Create(c.Request.Context(), req.Name, req.Email, req.Address, req.OwnerID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "store created", "store_id", store.ID, "owner_id", store.OwnerID)
	c.JSON(http.StatusCreated, gin.H{"store": store})
}

type updateStoreRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
}

func (s *Server) handleUpdateStore(c *gin.Context) {
	var req updateStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	store, err := s.stores.Update(c.Request.Context(), c.Param("id"), services.StoreUpdate{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": store})
}

func (s *Server) handleListStores(c *gin.Context) {
	filter := stores.ListFilter{
		Name:    c.Query("name"),
		Address: c.Query("address"),
		SortBy:  c.Query("sort_by"),
		Order:   c.Query("order"),
	}

	list, err := s.stores.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if list == nil {
		list = []*models.Store{}
	}
	c.JSON(http.StatusOK, gin.H{"stores": list})
}

func (s *Server) handleGetStore(c *gin.Context) {
	store, err := s.stores.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"store": store})
}

func (s *Server) handleDeleteStore(c *gin.Context) {
	if err := s.stores.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info(c.Request.Context(), "store deleted", "store_id", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "store deleted"})
}

type submitRatingRequest struct {
	Value int `json:"value"`
}

// handleSubmitRating records the caller's own rating; the identity always
// comes from the token, never the body.
func (s *Server) handleSubmitRating(c *gin.Context) {
	var req submitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	caller, _ := callerFrom(c)
	rating, err := s.ratings.Submit(c.Request.Context(), caller.ID, c.Param("id"), req.Value)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rating": rating})
}

// handleStoreRatings serves the per-store ratings listing to admins and
// the owning owner. A denied owner gets the same response as an anonymous
// caller, including when the store does not exist, so the endpoint leaks
// nothing about other owners' stores.
func (s *Server) handleStoreRatings(c *gin.Context) {
	caller, _ := callerFrom(c)

	store, err := s.stores.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) && caller.Role != models.RoleAdmin {
			abortUnauthorized(c)
			return
		}
		s.writeError(c, err)
		return
	}

	if !authz.CanViewStoreRatings(caller, store) {
		abortUnauthorized(c)
		return
	}

	result, err := s.ratings.ListForStore(c.Request.Context(), store.ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
