// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package web serves the display surface to spectators over websockets.
package web

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Hub is a render.Presenter which broadcasts every frame to the connected
// spectators. Slow spectators miss frames instead of slowing the display.
type Hub struct {
	mu      sync.Mutex
	last    []byte
	clients map[*client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

func (hub *Hub) Present(frame []byte) error {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.last = frame
	for c := range hub.clients {
		c.offer(frame)
	}

	return nil
}

// Close disconnects every spectator.
func (hub *Hub) Close() error {
	hub.mu.Lock()
	defer hub.mu.Unlock()

	hub.closed = true
	for c := range hub.clients {
		delete(hub.clients, c)
		close(c.send)
	}

	return nil
}

// Spectators returns the number of connected spectators.
func (hub *Hub) Spectators() int {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	return len(hub.clients)
}

// serve registers conn and pumps frames to it until it disconnects.
func (hub *Hub) serve(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, 8)}

	hub.mu.Lock()
	if hub.closed {
		hub.mu.Unlock()
		_ = conn.Close()
		return
	}

	hub.clients[c] = struct{}{}
	if hub.last != nil {
		c.offer(hub.last)
	}
	hub.mu.Unlock()

	go c.writePump()
	c.readPump()

	hub.mu.Lock()
	if _, ok := hub.clients[c]; ok {
		delete(hub.clients, c)
		close(c.send)
	}
	hub.mu.Unlock()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// offer queues frame without blocking, replacing the oldest queued frame
// if the client is behind. It must be called with the hub locked.
func (c *client) offer(frame []byte) {
	for {
		select {
		case c.send <- frame:
			return
		default:
		}

		select {
		case <-c.send:
		default:
		}
	}
}

// readPump discards everything the spectator sends, and returns when the
// connection is closed.
func (c *client) readPump() {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logrus.Debugf("web: spectator left: %v", err)
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				logrus.Debugf("web: write: %v", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
