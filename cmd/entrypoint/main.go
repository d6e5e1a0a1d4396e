// The container entrypoint: applies database migrations, then execs the
// command it was given. The server process replaces this one, so signals
// reach it directly.
package main

import (
	"log"
	"os"

	"org-registry/internal/entrypoint"
)

func main() {
	s := entrypoint.NewSequencer()
	if err := s.Run(os.Args[1:]); err != nil {
		log.Println(err)
		os.Exit(entrypoint.ExitCode(err))
	}
}
