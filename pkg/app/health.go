package app

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"edgelog/pkg/syncengine"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"
)

// HandleHealth returns data about the health of myself.
// output example:
//
//	{"NumGoroutines":9,"NumCPU":4,"HeapAllocatedMB":2,"SysMemoryMB":12,"Version":"1.0.0+20261019",
//	 "ProgLang":"go1.24.0","HostName":"pi","Time":"2026-10-19T10:00:00+02:00","Uptime":"1h2m0s",
//	 "Online":false,"SensorErrors":0,"StorageErrors":0}
func (app *App) HandleHealth() fiber.Handler {
	bToMb := func(b uint64) uint64 {
		return b / 1024 / 1024
	}

	host, _ := os.Hostname()
	start := time.Now()

	return func(ctx *fiber.Ctx) error {
		debug.InfoLog.Print("web request health")

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		s := app.engine.Status()

		healthData := struct {
			NumGoroutines   int
			NumCPU          int
			HeapAllocatedMB uint64
			SysMemoryMB     uint64
			Version         string
			ProgLang        string
			HostName        string
			Time            string
			Uptime          string
			Online          bool
			SensorErrors    int
			StorageErrors   int
		}{
			NumGoroutines:   runtime.NumGoroutine(),
			NumCPU:          runtime.NumCPU(),
			HeapAllocatedMB: bToMb(m.Alloc),
			SysMemoryMB:     bToMb(m.Sys),
			ProgLang:        runtime.Version(),
			Version:         VERSION,
			HostName:        host,
			Time:            time.Now().Format(time.RFC3339),
			Uptime:          time.Since(start).Round(time.Second).String(),
			Online:          s.State == syncengine.Online.String(),
			SensorErrors:    s.SensorErrors,
			StorageErrors:   s.StorageErrors,
		}
		ctx.Status(http.StatusOK)
		return ctx.JSON(healthData)
	}
}
