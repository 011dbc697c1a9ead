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

package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

const page = `<!DOCTYPE html>
<html>
<head><title>referee</title></head>
<body style="background:#111;color:#eee">
<pre id="surface">waiting for the game to start...</pre>
<script>
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/watch");
ws.onmessage = (event) => { document.getElementById("surface").textContent = event.data; };
ws.onclose = () => { document.title = "referee (disconnected)"; };
</script>
</body>
</html>
`

var upgrader = websocket.Upgrader{
	ReadBufferSize:  512,
	WriteBufferSize: 4096,
}

// Routes returns the spectator's http handler: the viewer page at /, the
// websocket stream of frames at /watch and the metrics at /metrics.
func Routes(hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	r.Get("/watch", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logrus.Debugf("web: upgrade: %v", err)
			return
		}

		logrus.Debugf("web: spectator joined from %s", r.RemoteAddr)
		hub.serve(conn)
		logrus.Debugf("web: spectator from %s left, %d watching", r.RemoteAddr, hub.Spectators())
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Server is a running spectator server.
type Server struct {
	Addr string
	http *http.Server
}

// Listen starts serving hub on addr in the background. It returns once the
// socket is bound.
func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	server := &Server{
		Addr: ln.Addr().String(),
		http: &http.Server{
			Handler:           Routes(hub),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	go func() {
		if err := server.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("web: serve: %v", err)
		}
	}()

	logrus.Infof("Spectators can watch at http://%s", server.Addr)
	return server, nil
}

// Shutdown gracefully stops the server.
func (server *Server) Shutdown(ctx context.Context) error {
	return server.http.Shutdown(ctx)
}
