package http

import (
	"net/http"

	"coldchain/internal/core/application/usecases/queries"

	"github.com/labstack/echo/v4"
)

// Server exposes the delivery run over HTTP.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	getDeliveryStatusHandler queries.GetDeliveryStatusQueryHandler
}

// NewServer creates a new HTTP server with the required query handlers.
func NewServer(
	getDeliveryStatusHandler queries.GetDeliveryStatusQueryHandler,
) *Server {
	return &Server{
		getDeliveryStatusHandler: getDeliveryStatusHandler,
	}
}

// RegisterRoutes attaches the server's endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.GetHealth)
	e.GET("/api/v1/delivery/status", s.GetDeliveryStatus)
}

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GetHealth handles GET /health - liveness probe.
func (s *Server) GetHealth(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// GetDeliveryStatus handles GET /api/v1/delivery/status - retrieves the
// current route, vehicle pose, stops, and per-shipment countdowns.
func (s *Server) GetDeliveryStatus(ctx echo.Context) error {
	query := queries.NewGetDeliveryStatusQuery()

	status, err := s.getDeliveryStatusHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve delivery status",
		})
	}

	return ctx.JSON(http.StatusOK, toStatusResponse(status))
}

// DeliveryStatusResponse is the JSON shape of the delivery picture.
type DeliveryStatusResponse struct {
	Polyline          []GeoPointResponse `json:"polyline"`
	Vehicle           VehicleResponse    `json:"vehicle"`
	Stops             []StopResponse     `json:"stops"`
	Shipments         []ShipmentResponse `json:"shipments"`
	Eta               string             `json:"eta"`
	RemainingDistance string             `json:"remainingDistance"`
}

type GeoPointResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type VehicleResponse struct {
	Lat       float64 `json:"lat"`
	Lon       float64 `json:"lon"`
	Bearing   float64 `json:"bearing"`
	PathIndex int     `json:"pathIndex"`
}

type StopResponse struct {
	ID       string  `json:"id"`
	NodeID   string  `json:"nodeId"`
	Kind     string  `json:"kind"`
	Status   string  `json:"status"`
	Sequence int     `json:"sequence"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	OrderID  string  `json:"orderId,omitempty"`
}

type ShipmentResponse struct {
	OrderID     string `json:"orderId"`
	Status      string `json:"status"`
	Remaining   string `json:"remaining"`
	InExcursion bool   `json:"inExcursion"`
}

func toStatusResponse(status queries.GetDeliveryStatusResponse) DeliveryStatusResponse {
	response := DeliveryStatusResponse{
		Polyline:          make([]GeoPointResponse, len(status.Polyline)),
		Stops:             make([]StopResponse, len(status.Stops)),
		Shipments:         make([]ShipmentResponse, len(status.Shipments)),
		Eta:               status.EtaText,
		RemainingDistance: status.RemainingDistanceText,
		Vehicle: VehicleResponse{
			Lat:       status.Vehicle.Lat,
			Lon:       status.Vehicle.Lon,
			Bearing:   status.Vehicle.Bearing,
			PathIndex: status.Vehicle.PathIndex,
		},
	}

	for i, p := range status.Polyline {
		response.Polyline[i] = GeoPointResponse{Lat: p.Lat, Lon: p.Lon}
	}

	for i, s := range status.Stops {
		response.Stops[i] = StopResponse{
			ID:       s.ID,
			NodeID:   s.NodeID,
			Kind:     s.Kind,
			Status:   s.Status,
			Sequence: s.Sequence,
			Lat:      s.Lat,
			Lon:      s.Lon,
			OrderID:  s.OrderID,
		}
	}

	for i, s := range status.Shipments {
		response.Shipments[i] = ShipmentResponse{
			OrderID:     s.OrderID,
			Status:      s.Status,
			Remaining:   s.RemainingText,
			InExcursion: s.InExcursion,
		}
	}

	return response
}
