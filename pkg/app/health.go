package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of myself and the receiver.
// output example:
//  {"NumGoroutines":11,"HeapAllocatedMB":3,"ReceiverEnabled":true,"DecoderPhase":"idle",
//   "Frames":17,"LastFrame":"2026-10-01T18:01:07+02:00","Version":"1.0.2+20261001"}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		app.last.RLock()
		lastFrame := ""
		if app.last.received {
			lastFrame = app.last.time.Format(time.RFC3339)
		}
		app.last.RUnlock()

		healthData := struct {
			NumGoroutines   int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			ReceiverEnabled bool
			DecoderPhase    string
			Frames          uint64
			LastFrame       string
			Version         string
			ProgLang        string
			HostName        string
			Time            string
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			ReceiverEnabled: app.decoder.Enabled(),
			DecoderPhase:    app.decoder.Phase().String(),
			Frames:          app.decoder.Stats().Frames,
			LastFrame:       lastFrame,
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Time:            time.Now().Format(time.RFC3339),
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
