package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sealmit/asig/pkg/types"
)

// bindArtifact decodes the polymorphic artifact payload from the request
// body. Gin's binding cannot dispatch on the type discriminator, so the
// raw body goes through types.UnmarshalArtifact.
func bindArtifact(c *gin.Context) (types.Artifact, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	return types.UnmarshalArtifact(body)
}

func (s *Server) createArtifact(c *gin.Context) {
	artifact, err := bindArtifact(c)
	if err != nil {
		fail(c, err)
		return
	}
	created, err := s.svc.CreateArtifact(c.Request.Context(), c.Param("name"), artifact)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}

func (s *Server) updateArtifact(c *gin.Context) {
	artifact, err := bindArtifact(c)
	if err != nil {
		fail(c, err)
		return
	}
	updated, err := s.svc.UpdateArtifact(c.Request.Context(), c.Param("name"), c.Param("id"), artifact)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteArtifact(c *gin.Context) {
	removed, err := s.svc.DeleteArtifact(c.Request.Context(), c.Param("name"), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "traces_removed": removed})
}

func (s *Server) createTrace(c *gin.Context) {
	var trace types.Trace
	if err := c.ShouldBindJSON(&trace); err != nil {
		fail(c, types.ErrMalformedEntity)
		return
	}
	created, err := s.svc.CreateTrace(c.Request.Context(), c.Param("name"), trace)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, created)
}
