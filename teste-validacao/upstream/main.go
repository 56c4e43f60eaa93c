// Upstream de brinquedo para validar o gateway: loga o intervalo entre
// chegadas, que deve ficar >= THROTTLE_PER / THROTTLE_COUNT do gateway.
package main

import (
	"net/http"
	"os"
	"sync"
	"time"

	"throttle-gateway/internal/logging"
)

func main() {
	log := logging.New(os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))

	var (
		mu   sync.Mutex
		last time.Time
	)
	http.HandleFunc("/showTela", func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		mu.Lock()
		gap := now.Sub(last)
		last = now
		mu.Unlock()

		log.Info().Dur("gap", gap).Str("from", r.RemoteAddr).Msg("request received")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<h1>Tela do Sistema</h1><p>Requisição recebida com sucesso!</p>"))
	})

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}
	log.Info().Str("addr", addr).Msg("upstream listening")
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
