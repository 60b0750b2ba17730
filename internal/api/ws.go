package api

import (
    "net/http"
    "time"

    "github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// RouteWSHandler handles GET /v1/route/ws: the same route.updated
// events as the SSE stream, over a WebSocket. The current route is sent
// immediately on connect so clients render without waiting for the next
// mutation.
func (s *Server) RouteWSHandler(w http.ResponseWriter, r *http.Request) {
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        return
    }
    defer func() { _ = conn.Close() }()

    ch := s.Broker.Subscribe(routeTopic)
    defer s.Broker.Unsubscribe(routeTopic, ch)

    conn.SetReadLimit(1 << 16)
    _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
    conn.SetPongHandler(func(string) error {
        _ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
        return nil
    })

    // reader loop only to surface close frames and pongs
    done := make(chan struct{})
    go func() {
        defer close(done)
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    if err := conn.WriteJSON(SSEEvent{Type: "route.updated", Data: map[string]any{"route": s.Planner.Route()}}); err != nil {
        return
    }

    pinger := time.NewTicker(20 * time.Second)
    defer pinger.Stop()
    for {
        select {
        case <-done:
            return
        case <-r.Context().Done():
            return
        case evt, ok := <-ch:
            if !ok {
                return
            }
            if err := conn.WriteJSON(evt); err != nil {
                return
            }
        case <-pinger.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
                return
            }
        }
    }
}
