package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storerate/storerate/internal/server/models"
	"github.com/storerate/storerate/internal/server/repositories/users"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

// handleRegister is the public self-registration endpoint. The role is
// always user here; elevated accounts come from the admin endpoint.
func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Address, req.Password, models.RoleUser)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "user_id", user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type createUserRequest struct {
	registerRequest
	Role string `json:"role"`
}

// handleCreateUser lets an admin create an account with any role.
func (s *Server) handleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	role := models.Role(req.Role)
	user, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Address, req.Password, role)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user created", "user_id", user.ID, "role", user.Role)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":   result.User.ID,
			"name": result.User.Name,
			"role": result.User.Role,
		},
	})
}

type updatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleUpdatePassword(c *gin.Context) {
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	caller, _ := callerFrom(c)
	if err := s.users.UpdatePassword(c.Request.Context(), caller.ID, req.OldPassword, req.NewPassword); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}

func (s *Server) handleListUsers(c *gin.Context) {
	filter := users.ListFilter{
		Name:    c.Query("name"),
		Email:   c.Query("email"),
		Address: c.Query("address"),
		Role:    models.Role(c.Query("role")),
		SortBy:  c.Query("sort_by"),
		Order:   c.Query("order"),
	}

	list, err := s.users.List(c.Request.Context(), filter)
	if err != nil {
		s.writeError(c, err)
		return
	}
	if list == nil {
		list = []*models.User{}
	}
	c.JSON(http.StatusOK, gin.H{"users": list})
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	if err := s.users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	s.logger.Info(c.Request.Context(), "user deleted", "user_id", c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}
