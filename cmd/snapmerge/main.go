package main

import (
	"github.com/joho/godotenv"

	"github.com/equipd/snapmerge/cmd/snapmerge/commands"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	// A missing .env file is the normal case outside docker-compose setups.
	_ = godotenv.Load()

	commands.SetVersionInfo(version, commit, buildTime)
	commands.Execute()
}
