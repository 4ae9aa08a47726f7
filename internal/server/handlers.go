package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"portfolio-api/internal/store"
	"portfolio-api/internal/types"

	"github.com/gin-gonic/gin"
)

// resolve maps the :name path segment to an account. Underscores stand in
// for spaces in dashboard URLs.
func (s *Server) resolve(c *gin.Context) (string, store.AccountConfig) {
	name := strings.ReplaceAll(c.Param("name"), "_", " ")
	return name, s.cfg.ResolveAccount(name)
}

// project reads ?project=, defaulting to the first account. ok is false (and
// a 400 written) when no such account is configured.
func (s *Server) project(c *gin.Context) (store.AccountConfig, bool) {
	raw := c.Query("project")
	if raw == "" && len(s.cfg.Accounts) > 0 {
		return s.cfg.Accounts[0], true
	}
	id, err := strconv.Atoi(raw)
	if err == nil {
		if acct, found := s.cfg.Account(id); found {
			return acct, true
		}
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid project. Must be one of %s", s.projectIDs())})
	return store.AccountConfig{}, false
}

func (s *Server) projectIDs() string {
	ids := make([]string, 0, len(s.cfg.Accounts))
	for _, a := range s.cfg.Accounts {
		ids = append(ids, strconv.Itoa(a.ID))
	}
	return strings.Join(ids, ", ")
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"accounts": s.portfolio.Health(c.Request.Context()),
	})
}

func (s *Server) listAlgorithms(c *gin.Context) {
	c.JSON(http.StatusOK, s.portfolio.Algorithms(c.Request.Context()))
}

func (s *Server) getAlgorithm(c *gin.Context) {
	name, acct := s.resolve(c)
	alg := s.portfolio.Algorithm(c.Request.Context(), acct.ID)
	alg.Name = name
	c.JSON(http.StatusOK, alg)
}

func (s *Server) getTrades(c *gin.Context) {
	name, acct := s.resolve(c)

	limit := s.cfg.Server.TradesLimit
	if v, err := strconv.Atoi(c.Query("limit")); err == nil {
		limit = max(v, 0)
	}

	res := s.portfolio.Trades(c.Request.Context(), acct.ID)
	recent := res.Trades
	if recent == nil {
		recent = []types.Trade{}
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	c.JSON(http.StatusOK, gin.H{
		"algorithm": name,
		"trades":    recent,
		"total":     len(res.Trades),
	})
}

func (s *Server) getStats(c *gin.Context) {
	name, acct := s.resolve(c)
	c.JSON(http.StatusOK, gin.H{
		"algorithm": name,
		"stats":     s.portfolio.Stats(c.Request.Context(), acct.ID),
	})
}

func (s *Server) getPerformance(c *gin.Context) {
	name, acct := s.resolve(c)
	perf := s.portfolio.Performance(c.Request.Context(), acct.ID, types.ParseHistoryWindow(c.Query("timeframe")))
	c.JSON(http.StatusOK, gin.H{
		"algorithm":       name,
		"timeframe":       perf.Timeframe,
		"data":            perf.Data,
		"as_of_timestamp": perf.AsOfMillis,
	})
}

func (s *Server) getMetrics(c *gin.Context) {
	acct, ok := s.project(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.portfolio.Metrics(c.Request.Context(), acct.ID))
}

func (s *Server) getLiveEquity(c *gin.Context) {
	acct, ok := s.project(c)
	if !ok {
		return
	}
	eq, ok := s.portfolio.LiveEquity(c.Request.Context(), acct.ID)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to compute live equity"})
		return
	}
	c.JSON(http.StatusOK, eq)
}
