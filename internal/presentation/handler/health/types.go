package health

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"` // RFC3339
	Uptime    string `json:"uptime"`
	Rooms     int    `json:"rooms"`
}
