package app

import (
	"time"

	"rc5rx/pkg/rc5"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

type resp struct {
	Received bool         `json:"received"`
	Time     time.Time    `json:"time"`  // time the last frame was received
	Frame    rc5.Frame    `json:"frame"` // last received frame
	Decoder  rc5.Snapshot `json:"decoder"`
	Stats    rc5.Stats    `json:"stats"`
}

// runWebServer starts the applications web server and listens for web requests.
//  It's designed to run in a separate go function to not block the main go function.
//  e.g.: go runWebServer()
//  See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the last received frame and the decoder state.
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		app.last.RLock()
		r := resp{
			Received: app.last.received,
			Time:     app.last.time,
			Frame:    app.last.frame,
		}
		app.last.RUnlock()

		r.Decoder = app.decoder.Snapshot()
		r.Stats = app.decoder.Stats()
		return ctx.JSON(r)
	}
}
