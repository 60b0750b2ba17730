// Package main runs a demo WebSocket client for route updates.
package main

import (
    "bytes"
    "encoding/json"
    "fmt"
    "log"
    "net/http"
    "net/url"
    "os"
    "time"

    "github.com/gorilla/websocket"
)

func main() {
    port := os.Getenv("PORT")
    if port == "" {
        port = "8080"
    }
    base := fmt.Sprintf("http://localhost:%s", port)

    // Connect WS first so the seeded stops produce visible events
    u := url.URL{Scheme: "ws", Host: "localhost:" + port, Path: "/v1/route/ws"}
    c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
    if err != nil {
        log.Fatal("dial:", err)
    }
    defer func() { _ = c.Close() }()

    done := make(chan struct{})
    go func() {
        defer close(done)
        for {
            var m struct {
                Type string         `json:"type"`
                Data map[string]any `json:"data"`
            }
            if err := c.ReadJSON(&m); err != nil {
                log.Printf("read: %v", err)
                return
            }
            b, _ := json.Marshal(m.Data)
            log.Printf("WS <- %s: %s", m.Type, string(b))
        }
    }()

    // Seed a couple of stops to trigger route.updated events
    for _, name := range []string{"Nashville, TN", "Memphis, TN"} {
        body, _ := json.Marshal(map[string]string{"name": name})
        req, _ := http.NewRequest(http.MethodPost, base+"/v1/stops", bytes.NewReader(body))
        req.Header.Set("Content-Type", "application/json")
        resp, err := http.DefaultClient.Do(req)
        if err != nil {
            log.Fatal(err)
        }
        _ = resp.Body.Close()
        log.Printf("added stop %q: %s", name, resp.Status)
        time.Sleep(1500 * time.Millisecond) // stay under the geocoder rate limit
    }

    // Wait briefly to receive the recomputed routes
    select {
    case <-time.After(5 * time.Second):
    case <-done:
    }
}
