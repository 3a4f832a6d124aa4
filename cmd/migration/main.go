package main

import (
	"fmt"
	"os"

	"gitlab.com/dirk.krummacker/birthday-assistant/internal/config"
	"gitlab.com/dirk.krummacker/birthday-assistant/internal/database"
)

// Applies all pending schema migrations embedded in the binary.
//
// Usage example on the command line:
//
//	> BIRTHDAY_AUTH_SECRET=changeme BIRTHDAY_DATABASE_USER=dirk BIRTHDAY_DATABASE_PASSWORD=bullo92 go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	db, err := database.Open(cfg.DB.DSN())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("migrations applied")
}
