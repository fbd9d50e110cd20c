package server

import (
	"net/http"

	"skirmish/server/domain"
	"skirmish/server/handler"
)

func Route(pubsub domain.PubSub, roomManager domain.RoomManager, status func() handler.Status) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/ws", handler.NewAcceptHandler(pubsub, roomManager))
	mux.Handle("/healthz", handler.NewHealthHandler(status))
	return mux
}
