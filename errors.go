/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

func newLogger(cfg *Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	return zc.Build()
}

// logServe records a served response at debug level.
func logServe(cfg *Config, what string, r *http.Request, written int, startTime time.Time) {
	cfg.logger.Named("http").Debug("SERVE: "+what,
		zap.String("size", humanReadableSize(int64(written))),
		zap.String("remote", realIP(r)),
		zap.Duration("elapsed", time.Since(startTime).Round(time.Microsecond)),
	)
}

// drainErrors logs response write failures until errs is closed.
func drainErrors(logger *zap.Logger, errs <-chan error) {
	for err := range errs {
		logger.Debug("write failed", zap.Error(err))
	}
}

func newPage(cfg *Config, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", html.EscapeString(title)))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"%s/\">%s</a></body></html>", cfg.prefix, html.EscapeString(body)))

	return htmlBody.String()
}
