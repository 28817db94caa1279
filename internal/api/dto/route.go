package dto

import "time"

type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type GenerateRoutesRequest struct {
	MissionID  int64   `json:"mission_id"`
	Start      Point   `json:"start"`
	End        Point   `json:"end"`
	VehicleIDs []int64 `json:"vehicle_ids"`
}

type SegmentResponse struct {
	SequenceOrder    int     `json:"sequence_order"`
	From             Point   `json:"from"`
	To               Point   `json:"to"`
	DistanceKm       float64 `json:"distance_km"`
	EstimatedTimeMin float64 `json:"estimated_time_min"`
	RoadCondition    string  `json:"road_condition"`
	RoadName         string  `json:"road_name"`
}

type ObstacleResponse struct {
	InfrastructureID       int64  `json:"infrastructure_id"`
	InfrastructureName     string `json:"infrastructure_name"`
	RestrictionType        string `json:"restriction_type"`
	CanPass                bool   `json:"can_pass"`
	AlternativeRouteNeeded bool   `json:"alternative_route_needed"`
	Notes                  string `json:"notes"`
}

type ProposalResponse struct {
	ID                    string             `json:"id"`
	MissionID             int64              `json:"mission_id"`
	RouteType             string             `json:"route_type"`
	TotalDistanceKm       float64            `json:"total_distance_km"`
	EstimatedTimeMinutes  float64            `json:"estimated_time_minutes"`
	FuelConsumptionLiters float64            `json:"fuel_consumption_liters"`
	Approved              bool               `json:"approved"`
	GeneratedAt           time.Time          `json:"generated_at"`
	Segments              []SegmentResponse  `json:"segments"`
	Obstacles             []ObstacleResponse `json:"obstacles"`
}

type ListProposalsResponse struct {
	Proposals []ProposalResponse `json:"proposals"`
}

type ListObstaclesResponse struct {
	Obstacles []ObstacleResponse `json:"obstacles"`
}

type ValidationResponse struct {
	Valid    bool     `json:"valid"`
	Warnings []string `json:"warnings"`
	Errors   []string `json:"errors"`
}
