package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civiclab/councilsim/broadcast"
	"github.com/civiclab/councilsim/core"
	"github.com/civiclab/councilsim/logging"
	"github.com/civiclab/councilsim/session"
	"github.com/civiclab/councilsim/simulation"
)

// maxDocumentBytes caps uploaded proposal documents.
const maxDocumentBytes = 1 << 20

// registerRoutes sets up the API and streaming routes.
func registerRoutes(router *gin.Engine, mgr *simulation.Manager, hub *broadcast.Hub, logger logging.Logger) {
	api := router.Group("/api")
	api.POST("/simulations", handleCreateSimulation(mgr))
	api.GET("/simulations", handleListSimulations(mgr))
	api.GET("/simulations/:id", handleGetSimulation(mgr))

	router.GET("/ws/simulation/:id", handleSimulationSocket(mgr, hub, logger))
}

func handleCreateSimulation(mgr *simulation.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cityName := strings.TrimSpace(c.PostForm("city_name"))
		proposal := strings.TrimSpace(c.PostForm("proposal_details"))
		if cityName == "" || proposal == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "city_name and proposal_details are required"})
			return
		}

		input := core.SimulationInput{
			CityName:        cityName,
			State:           strings.TrimSpace(c.PostForm("state")),
			CompanyName:     strings.TrimSpace(c.PostForm("company_name")),
			ProposalDetails: proposal,
			Concerns:        splitConcerns(c.PostForm("concerns")),
			DocumentText:    readDocument(c),
		}

		sess := mgr.Create(input)
		c.JSON(http.StatusOK, gin.H{
			"simulation_id": sess.ID,
			"status":        sess.Status,
			"ws_url":        "/ws/simulation/" + sess.ID,
		})
	}
}

func handleGetSimulation(mgr *simulation.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, err := mgr.Get(c.Param("id"))
		if err != nil {
			if errors.Is(err, session.ErrSessionNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "simulation not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"id":         sess.ID,
			"status":     sess.Status,
			"city":       sess.Input.CityName,
			"company":    sess.Input.CompanyName,
			"personas":   sess.Personas,
			"transcript": sess.Turns,
			"analysis":   sess.Analysis,
			"error":      sess.Error,
		})
	}
}

func handleListSimulations(mgr *simulation.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions := mgr.List()
		out := make([]gin.H, 0, len(sessions))
		for _, sess := range sessions {
			out = append(out, gin.H{
				"id":      sess.ID,
				"status":  sess.Status,
				"city":    sess.Input.CityName,
				"company": sess.Input.CompanyName,
			})
		}
		c.JSON(http.StatusOK, gin.H{"simulations": out})
	}
}

// splitConcerns parses the comma-separated concerns form field.
func splitConcerns(raw string) []string {
	var out []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// readDocument extracts uploaded document text, best-effort. A missing or
// unreadable document never fails the request.
func readDocument(c *gin.Context) string {
	file, _, err := c.Request.FormFile("document")
	if err != nil {
		return ""
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes))
	if err != nil {
		return ""
	}
	return string(data)
}
