// Command supportctl searches the support FAQ catalog and works the
// escalation queue of a supportd server.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/tbourn/go-support-desk/internal/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(cli.Execute())
}
