package handler

import (
	"encoding/json"
	"net/http"
)

// Status は /healthz が返す状態です。
type Status struct {
	Mode      string `json:"mode"`
	Connected bool   `json:"connected"`
	Entities  int    `json:"entities"`
	Kills     int    `json:"kills"`
	Ticks     uint64 `json:"ticks"`
}

// NewHealthHandler は status が nil なら 200 だけを返します。
func NewHealthHandler(status func() Status) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if status == nil {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(status())
	}
}
