// File: internal/server/handlers.go
package server

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/rodsoto/seminuevos-publisher/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// publishRequest is the caller's contribution to the listing; everything
// else about the vehicle comes from deployment configuration.
type publishRequest struct {
	Price       float64 `json:"price"`
	Description string  `json:"description"`
}

// publishResponse flattens the session result for the HTTP caller. Only the
// last screenshot travels in the response; the full trail stays on disk.
type publishResponse struct {
	Status         schemas.PublicationStatus `json:"status"`
	Message        string                    `json:"message"`
	PublicationID  string                    `json:"publicationId,omitempty"`
	PublicationURL string                    `json:"publicationUrl,omitempty"`
	Screenshot     string                    `json:"screenshot,omitempty"`
	SessionID      string                    `json:"sessionId"`
}

type errorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handlePublishAd(w http.ResponseWriter, r *http.Request) {
	var req publishRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Invalid request body."})
		return
	}
	if req.Price <= 0 || req.Description == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Price and description are required."})
		return
	}

	s.logger.Info("Publish request accepted.", zap.Float64("price", req.Price))

	result := s.publisher.Run(r.Context(),
		s.cfg.Credentials.Credentials(),
		s.cfg.Ad.AdData(req.Price, req.Description),
	)

	resp := publishResponse{
		Status:         result.Status,
		PublicationID:  result.PublicationID,
		PublicationURL: result.PublicationURL,
		SessionID:      result.SessionID,
	}
	if n := len(result.Screenshots); n > 0 {
		resp.Screenshot = result.Screenshots[n-1].Image
	}
	if result.Status == schemas.StatusPublished {
		resp.Message = "Ad published successfully"
	} else {
		resp.Message = "Failed to publish ad"
	}

	// Session failures still answer 200: the session itself ran to a
	// conclusion and the body carries the outcome.
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response body.", zap.Error(err))
	}
}
