package health

import (
	"net/http"
	"time"

	"github.com/hilthontt/oekaki/internal/infrastructure/json"
)

// RoomCounter reports how many rooms are currently held.
type RoomCounter interface {
	Count() int
}

type Handler struct {
	startTime time.Time
	rooms     RoomCounter
}

func NewHandler(rooms RoomCounter) *Handler {
	return &Handler{
		startTime: time.Now(),
		rooms:     rooms,
	}
}

func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}
	if h.rooms != nil {
		resp.Rooms = h.rooms.Count()
	}

	_ = json.Write(w, http.StatusOK, resp)
}
