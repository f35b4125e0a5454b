package main

import (
	"context"

	"challanup-backend/cmd/challan-cli/commands"
	"challanup-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "challan-cli")
	telemetry.InitSlog(true)
	commands.ExecuteContext(context.Background())
}
