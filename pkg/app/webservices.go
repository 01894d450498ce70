package app

import (
	"net/http"

	"edgelog/pkg/syncengine"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

type resp struct {
	syncengine.Status
	BufferFile      string // location of the local buffer
	BufferBytes     int64  // current size of the local buffer
	BufferMaxBytes  int64  // soft limit of the local buffer
	BufferOverflows int    // number of discarded buffers because of the size limit
}

// runWebServer starts the applications web server and listens for web requests.
// It's designed to run in a separate go function to not block the main go function.
// e.g.: go runWebServer()
// See app.Run()
func (app *App) runWebServer() {
	err := app.web.Listen(app.urlParsed.Host)
	debug.ErrorLog.Print(err)
}

// HandleData returns the state of the sync engine and the local buffer.
// output example:
//
//	{"State":"offline","LastRecord":"4000,23.50,61.20,0.012,-0.003,0.998,0","Samples":2,"Live":0,"Buffered":2,
//	 "Drained":0,"Malformed":0,"SensorErrors":0,"StorageErrors":0,"BufferFile":"/var/lib/edgelog/buffer.csv",
//	 "BufferBytes":76,"BufferMaxBytes":204800,"BufferOverflows":0}
func (app *App) HandleData() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request data")

		// the buffer size is read from the file system, the buffer handler itself isn't touched
		size, err := app.buffer.Size()
		if err != nil {
			debug.ErrorLog.Printf("can't read buffer size: %v", err)
		}

		return ctx.JSON(resp{
			Status:          app.engine.Status(),
			BufferFile:      app.buffer.Path(),
			BufferBytes:     size,
			BufferMaxBytes:  app.config.Buffer.MaxBytes,
			BufferOverflows: app.buffer.Overflows(),
		})
	}
}

// HandleConnectivity switches the emulated connectivity line, e.g. PUT /connectivity/online
func (app *App) HandleConnectivity() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Printf("web request connectivity %s", ctx.Params("state"))

		switch ctx.Params("state") {
		case "online":
			app.emulated.Set(app.config.Gpio.Connectivity, true)
		case "offline":
			app.emulated.Set(app.config.Gpio.Connectivity, false)
		default:
			return ctx.Status(http.StatusBadRequest).SendString("state must be online or offline")
		}

		return ctx.SendStatus(http.StatusNoContent)
	}
}
