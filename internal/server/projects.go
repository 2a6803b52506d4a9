package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sealmit/asig/pkg/types"
)

// createProjectRequest is the POST /api/projects payload. The name is
// checked by the projectname binding rule before it reaches the service.
type createProjectRequest struct {
	Name       string                   `json:"name" binding:"required,projectname"`
	Levels     []types.RequirementLevel `json:"levels"`
	RiskMatrix map[string]any           `json:"risk_matrix"`
	Settings   types.ProjectSettings    `json:"settings"`
}

type commitRequest struct {
	Message string `json:"message" binding:"required"`
}

type checkoutRequest struct {
	Revision string `json:"revision" binding:"required"`
}

func (s *Server) listProjects(c *gin.Context) {
	names, err := s.svc.List()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", types.ErrMalformedEntity, err))
		return
	}

	config, err := s.svc.Create(c.Request.Context(), types.ProjectConfig{
		Name:       req.Name,
		Levels:     req.Levels,
		RiskMatrix: req.RiskMatrix,
		Settings:   req.Settings,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

func (s *Server) getProject(c *gin.Context) {
	state, err := s.svc.Load(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (s *Server) getHistory(c *gin.Context) {
	history, err := s.svc.History(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, fmt.Errorf("%w: %v", types.ErrMalformedEntity, err))
		return
	}
	if err := s.svc.Checkout(c.Request.Context(), c.Param("name"), req.Revision); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "checked out", "revision": req.Revision})
}

func (s *Server) commit(c *gin.Context) {
	var req commitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, types.ErrEmptyCommitMessage)
		return
	}
	if err := s.svc.Commit(c.Request.Context(), c.Param("name"), req.Message); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "committed", "message": req.Message})
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.svc.GetSettings(c.Request.Context(), c.Param("name"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) putSettings(c *gin.Context) {
	var settings types.ProjectSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		fail(c, fmt.Errorf("%w: %v", types.ErrMalformedEntity, err))
		return
	}
	updated, err := s.svc.PutSettings(c.Request.Context(), c.Param("name"), settings)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) putLevels(c *gin.Context) {
	var levels []types.RequirementLevel
	if err := c.ShouldBindJSON(&levels); err != nil {
		fail(c, fmt.Errorf("%w: %v", types.ErrMalformedEntity, err))
		return
	}
	updated, err := s.svc.PutLevels(c.Request.Context(), c.Param("name"), levels)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
