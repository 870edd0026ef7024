package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripbuddy/internal/domain"
	"tripbuddy/internal/middleware"
	"tripbuddy/internal/service"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rides *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rides *service.RideService) *RideHandler {
	return &RideHandler{rides: rides}
}

// PostRideRequest is the HTTP request body for posting a ride.
type PostRideRequest struct {
	StartLocation string  `json:"start_location"`
	EndLocation   string  `json:"end_location"`
	Price         float64 `json:"price"`
	Seats         int     `json:"seats"`
	Date          string  `json:"date"`
	Time          string  `json:"time,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID            string  `json:"id"`
	CreatorID     string  `json:"creator_id"`
	StartLocation string  `json:"start_location"`
	EndLocation   string  `json:"end_location"`
	Price         float64 `json:"price"`
	Seats         int     `json:"seats"`
	SeatsPosted   int     `json:"seats_posted"`
	Date          string  `json:"date"`
	Time          string  `json:"time,omitempty"`
	Description   string  `json:"description,omitempty"`
	Status        string  `json:"status"`
}

func toRideResponse(r *domain.Ride) RideResponse {
	return RideResponse{
		ID:            r.ID,
		CreatorID:     r.CreatorID,
		StartLocation: r.StartLocation,
		EndLocation:   r.EndLocation,
		Price:         r.Price,
		Seats:         r.Seats,
		SeatsPosted:   r.SeatsPosted,
		Date:          r.Date.Format("2006-01-02"),
		Time:          r.Time,
		Description:   r.Description,
		Status:        string(r.Status),
	}
}

// Post handles POST /v1/rides
func (h *RideHandler) Post(c *gin.Context) {
	var req PostRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, err := h.rides.Post(c.Request.Context(), service.PostRideRequest{
		CreatorID:     middleware.CurrentUserID(c),
		StartLocation: req.StartLocation,
		EndLocation:   req.EndLocation,
		Price:         req.Price,
		Seats:         req.Seats,
		Date:          req.Date,
		Time:          req.Time,
		Description:   req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toRideResponse(ride))
}

// Search handles GET /v1/rides?from=&to=
func (h *RideHandler) Search(c *gin.Context) {
	rides, err := h.rides.Search(c.Request.Context(), middleware.CurrentUserID(c), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, r := range rides {
		response = append(response, toRideResponse(r))
	}
	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /v1/rides/:id
func (h *RideHandler) Get(c *gin.Context) {
	ride, err := h.rides.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, toRideResponse(ride))
}
