/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"bytes"
	"net/http"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/Nullxdev/vampir/internal/gateway"
	"github.com/Nullxdev/vampir/internal/village"
)

const (
	villagePath = "/village"
	qrSize      = 320
)

func serveVillageIndex(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		startTime := time.Now()

		page, err := assets.ReadFile("assets/village/index.html")
		if err != nil {
			panic(err)
		}
		page = bytes.ReplaceAll(page, []byte("{{prefix}}"), []byte(cfg.prefix))

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		written, err := w.Write(page)
		if err != nil {
			errs <- err

			return
		}

		logServe(cfg, "village page", r, written, startTime)
	}
}

// serveRoomQR renders the invite link for a live room as a PNG.
func serveRoomQR(cfg *Config, registry *village.Registry, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		roomID := ps.ByName("roomid")
		if _, ok := registry.Get(roomID); !ok {
			http.Error(w, "room not found", http.StatusNotFound)

			return
		}

		scheme := cfg.scheme()
		if proto := r.Header.Get("X-Forwarded-Proto"); proto == "http" || proto == "https" {
			scheme = proto
		}

		url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

		png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
		if err != nil {
			http.Error(w, "qr generation failed", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logServe(cfg, "room qr code", r, written, startTime)
	}
}

// registerVillageGame sets up routes so that:
//   - $prefix/village          → client
//   - $prefix/village/:roomid  → client, prefilled to join that room
//   - $prefix/village/:roomid/qr → PNG QR code for that room's URL
//   - $prefix/ws               → game websocket
func registerVillageGame(cfg *Config, mux *httprouter.Router, registry *village.Registry, gw *gateway.Gateway, errs chan<- error) {
	mux.GET(cfg.prefix+villagePath, serveVillageIndex(cfg, errs))

	mux.GET(cfg.prefix+villagePath+"/:roomid", serveVillageIndex(cfg, errs))

	mux.GET(cfg.prefix+villagePath+"/:roomid/qr", serveRoomQR(cfg, registry, errs))

	mux.Handler(http.MethodGet, cfg.prefix+"/ws", gw)
}
