// Package api wires up the Gin HTTP router with the wire contract described
// client writes, peer gossip, blacklist control, and the two read
// endpoints.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"kvgossip/internal/store"
)

// Handler holds the one dependency every route needs: this node's Store.
// The core never reaches across the transport boundary — every handler
// below is responsible for translating Store outcomes into the standard error
// taxonomy itself.
type Handler struct {
	store *store.Store
}

// NewHandler creates a Handler for s.
func NewHandler(s *store.Store) *Handler {
	return &Handler{store: s}
}

// Register mounts all routes on r.
func (h *Handler) Register(r *gin.Engine) {
	r.PATCH("/update", h.Update)
	r.PUT("/merge", h.Merge)
	r.PUT("/exclude", h.Exclude)
	r.GET("/records", h.Records)
	r.GET("/snapshot", h.Snapshot)
}

// senderBlacklisted reports whether the optional Node header on an inbound
// request names a blacklisted peer. A missing or non-numeric header is
// never treated as blacklisted.
func (h *Handler) senderBlacklisted(c *gin.Context) bool {
	raw := c.GetHeader("Node")
	if raw == "" {
		return false
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return false
	}
	return h.store.IsBlacklisted(store.NodeID(id))
}

// Update handles PATCH /update — a client write. The body is a flat
// JSON object of key → value; an empty value deletes the key. For each pair,
// in iteration order, the handler ticks the clock once, builds an Operation
// stamped with the resulting (deep-copied) vector, and applies it.
func (h *Handler) Update(c *gin.Context) {
	if h.senderBlacklisted(c) {
		c.Status(http.StatusNoContent)
		return
	}

	var body map[string]string
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body format"})
		return
	}

	for key, value := range body {
		stamp := h.store.Tick()
		op := store.Operation{
			Key:    key,
			Value:  value,
			Kind:   store.KindFor(value),
			Origin: h.store.Self(),
			Stamp:  stamp,
		}
		h.store.Apply(op)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Merge handles PUT /merge — inbound peer gossip. The body is a
// JSON array of wire Operation records. The sender's Node header is checked
// against the blacklist first; a blacklisted sender's payload is never even
// decoded. Each operation is applied and then its stamp is absorbed into the
// local clock.
func (h *Handler) Merge(c *gin.Context) {
	if h.senderBlacklisted(c) {
		// The original source returns an empty response body here, which
		// Flask turns into a malformed 500. An empty 204 communicates the
		// same "ignored, no error" outcome without that bug.
		c.Status(http.StatusNoContent)
		return
	}

	var ops []store.Operation
	if err := c.ShouldBindJSON(&ops); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "caught exception"})
		return
	}

	for _, op := range ops {
		h.store.Apply(op)
		h.store.Absorb(op.Stamp)
	}

	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Exclude handles PUT /exclude — installs a peer blacklist from the
// comma-separated Nodes header, replacing whatever blacklist was there
// before. Tokens that don't parse as a NodeID are skipped rather than
// failing the whole request; the source has no validation here at all.
func (h *Handler) Exclude(c *gin.Context) {
	raw := c.GetHeader("Nodes")

	var ids []store.NodeID
	if raw != "" {
		for _, tok := range strings.Split(raw, ",") {
			id, err := strconv.Atoi(strings.TrimSpace(tok))
			if err != nil {
				continue
			}
			ids = append(ids, store.NodeID(id))
		}
	}

	h.store.SetBlacklist(ids)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Records handles GET /records — returns the visible data map.
func (h *Handler) Records(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ReadAll())
}

// Snapshot handles GET /snapshot — returns the internal (data, per-key
// clocks, local clock) triple, used by tests.
func (h *Handler) Snapshot(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.ReadSnapshot())
}
