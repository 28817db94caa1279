package handlers

import (
	"convoy-route-service/internal/api/dto"
	"convoy-route-service/internal/domain"
	"convoy-route-service/internal/ports"
	"convoy-route-service/internal/services"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// RouteHandler exposes the route proposal engine over HTTP.
// It coordinates request decoding and response mapping; all routing
// semantics live in the assembler.
type RouteHandler struct {
	Assembler *services.Assembler
	Proposals ports.ProposalRepository
}

// Generate produces one proposal per variant for a mission and vehicle set.
func (h *RouteHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateRoutesRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	proposals, err := h.Assembler.GenerateRoutes(r.Context(), services.GenerateRequest{
		MissionID:  req.MissionID,
		Start:      domain.Coordinates{Lat: req.Start.Lat, Lon: req.Start.Lon},
		End:        domain.Coordinates{Lat: req.End.Lat, Lon: req.End.Lon},
		VehicleIDs: req.VehicleIDs,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListProposalsResponse{Proposals: make([]dto.ProposalResponse, 0, len(proposals))}
	for _, p := range proposals {
		res.Proposals = append(res.Proposals, proposalResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one proposal with segments and obstacles.
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Proposals.GetProposal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, proposalResponse(p))
}

// ListByMission returns all proposals generated for a mission.
func (h *RouteHandler) ListByMission(w http.ResponseWriter, r *http.Request) {
	missionID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid mission id")
		return
	}

	proposals, err := h.Proposals.ListByMission(r.Context(), missionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListProposalsResponse{Proposals: make([]dto.ProposalResponse, 0, len(proposals))}
	for _, p := range proposals {
		res.Proposals = append(res.Proposals, proposalResponse(p))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Obstacles returns the obstacle list of a proposal.
func (h *RouteHandler) Obstacles(w http.ResponseWriter, r *http.Request) {
	obstacles, err := h.Assembler.GetObstacles(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListObstaclesResponse{Obstacles: make([]dto.ObstacleResponse, 0, len(obstacles))}
	for _, o := range obstacles {
		res.Obstacles = append(res.Obstacles, obstacleResponse(o))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Validate checks a proposal for internal consistency.
func (h *RouteHandler) Validate(w http.ResponseWriter, r *http.Request) {
	result, err := h.Assembler.ValidateRoute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ValidationResponse{
		Valid:    result.Valid,
		Warnings: result.Warnings,
		Errors:   result.Errors,
	})
}

// Approve flips the approved flag on.
func (h *RouteHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.Assembler.ApproveRoute(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "approved"})
}

// Reject flips the approved flag off.
func (h *RouteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.Assembler.RejectRoute(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{"status": "rejected"})
}

// Optimize persists a new OPTIMIZED proposal derived from an existing one.
func (h *RouteHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	p, err := h.Assembler.OptimizeProposal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, proposalResponse(p))
}

func proposalResponse(p domain.RouteProposal) dto.ProposalResponse {
	segments := make([]dto.SegmentResponse, 0, len(p.Segments))
	for _, s := range p.Segments {
		segments = append(segments, dto.SegmentResponse{
			SequenceOrder:    s.SequenceOrder,
			From:             dto.Point{Lat: s.From.Lat, Lon: s.From.Lon},
			To:               dto.Point{Lat: s.To.Lat, Lon: s.To.Lon},
			DistanceKm:       s.DistanceKm,
			EstimatedTimeMin: s.EstimatedTimeMin,
			RoadCondition:    s.RoadCondition,
			RoadName:         s.RoadName,
		})
	}

	obstacles := make([]dto.ObstacleResponse, 0, len(p.Obstacles))
	for _, o := range p.Obstacles {
		obstacles = append(obstacles, obstacleResponse(o))
	}

	return dto.ProposalResponse{
		ID:                    p.ID,
		MissionID:             p.MissionID,
		RouteType:             string(p.Variant),
		TotalDistanceKm:       p.TotalDistanceKm,
		EstimatedTimeMinutes:  p.EstimatedTimeMinutes,
		FuelConsumptionLiters: p.FuelConsumptionLiters,
		Approved:              p.Approved,
		GeneratedAt:           p.GeneratedAt,
		Segments:              segments,
		Obstacles:             obstacles,
	}
}

func obstacleResponse(o domain.RouteObstacle) dto.ObstacleResponse {
	return dto.ObstacleResponse{
		InfrastructureID:       o.InfrastructureID,
		InfrastructureName:     o.InfrastructureName,
		RestrictionType:        string(o.RestrictionType),
		CanPass:                o.CanPass,
		AlternativeRouteNeeded: o.AlternativeRouteNeeded,
		Notes:                  o.Notes,
	}
}
