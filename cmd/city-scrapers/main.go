package main

import (
	"context"

	"city-scrapers-det/cmd/city-scrapers/commands"
	"city-scrapers-det/lib/osutil"
	"city-scrapers-det/lib/telemetry"
)

func main() {
	ctx := osutil.SignalContext()

	t, err := telemetry.SetupFromEnv(ctx, "city-scrapers")
	if err != nil {
		osutil.Fatal("failed to set up telemetry", err)
	}
	defer t.Shutdown(context.Background())
	telemetry.InitSlog(true)

	commands.ExecuteContext(ctx)
}
