package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"github.com/tkingovr/pipefilter/api"
	"github.com/tkingovr/pipefilter/internal/groups"
	"github.com/tkingovr/pipefilter/internal/node"
)

// SlotRequest is the body of PUT /api/v1/nodes/:id/slots/:index.
type SlotRequest struct {
	Criterion string `json:"criterion"`
}

// ModeRequest is the body of PUT /api/v1/nodes/:id/mode.
type ModeRequest struct {
	Mode string `json:"mode"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := s.auditStore.Stats(r.Context())
	if err != nil {
		http.Error(w, "failed to get stats", http.StatusInternalServerError)
		return
	}

	var snapshots []api.Snapshot
	for _, id := range s.nodes.IDs() {
		if n, ok := s.nodes.Get(id); ok {
			snapshots = append(snapshots, n.Snapshot())
		}
	}

	data := map[string]any{
		"Stats": stats,
		"Nodes": snapshots,
	}
	renderPage(w, "overview", data)
}

func (s *Server) handleListNodes(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"nodes": s.nodes.IDs()})
}

func (s *Server) handleGetNode(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	n, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, n.Snapshot())
}

func (s *Server) handleSetSlot(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	index, err := strconv.Atoi(ps.ByName("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid slot index %q", ps.ByName("index")))
		return
	}

	var req SlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, err := groups.Criterion(r.Context(), s.resolver, req.Criterion)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := n.SetSlot(r.Context(), index, c); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, n.Snapshot())
}

func (s *Server) handleSetMode(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	var req ModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	mode, err := api.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := n.SetMode(r.Context(), mode); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, n.Snapshot())
}

// handleSync streams sync payloads to an observer as binary websocket
// messages, starting with the current state.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	n, ok := s.lookup(w, ps)
	if !ok {
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "node", n.ID(), "error", err)
		return
	}
	defer conn.Close()

	ch, cancel := s.hub.Subscribe(n.ID())
	defer cancel()

	// The reader only exists to notice the peer going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	s.logger.Debug("observer attached", "node", n.ID())
	if err := conn.WriteMessage(websocket.BinaryMessage, n.SyncPayload()); err != nil {
		return
	}
	for {
		select {
		case payload, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
				return
			}
		case <-closed:
			s.logger.Debug("observer detached", "node", n.ID())
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) handleAPIStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	stats, err := s.auditStore.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAPIAudit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseQueryFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.auditStore.Query(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to query extraction log")
		return
	}
	if records == nil {
		records = []*api.ExtractionRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleAuditStream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	ch, cancel := s.auditStore.Subscribe(r.Context())
	defer cancel()

	for {
		select {
		case record, ok := <-ch:
			if !ok {
				return
			}
			data, err := json.Marshal(record)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: extraction\ndata: %s\n\n", data)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) lookup(w http.ResponseWriter, ps httprouter.Params) (*node.Node, bool) {
	id := ps.ByName("id")
	n, ok := s.nodes.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("node %q not found", id))
	}
	return n, ok
}

func parseQueryFilter(r *http.Request) (api.QueryFilter, error) {
	q := r.URL.Query()
	f := api.QueryFilter{
		Node: q.Get("node"),
		Kind: api.Kind(q.Get("kind")),
	}
	if v := q.Get("mode"); v != "" {
		m, err := api.ParseMode(v)
		if err != nil {
			return f, err
		}
		f.Mode = &m
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid since %q: %w", v, err)
		}
		f.Since = t
	}
	for key, dst := range map[string]*int{"limit": &f.Limit, "offset": &f.Offset} {
		v := q.Get(key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return f, fmt.Errorf("invalid %s %q", key, v)
		}
		*dst = n
	}
	return f, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
