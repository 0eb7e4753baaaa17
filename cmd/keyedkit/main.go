package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"keyedkit/pkg/config"
	"keyedkit/pkg/database"
	"keyedkit/pkg/logging"
	"keyedkit/pkg/repl"

	"github.com/google/uuid"
)

// Listens for SIGINT or SIGTERM and destroys every container before exiting.
func setupCloseHandler(db *database.Database) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		fmt.Println("closehandler invoked")
		db.Close()
		os.Exit(0)
	}()
}

// Start the REPL.
func main() {
	// Set up flags.
	var promptFlag = flag.Bool("c", true, "use prompt?")
	var logFlag = flag.Bool("log", false, "enable logging to stderr")
	var logLevelFlag = flag.String("log-level", "info", "log level: [debug,info,warn,error]")
	var logFormatFlag = flag.String("log-format", "text", "log format: [text,json]")
	flag.Parse()

	logging.Init(logging.Options{
		Enabled: *logFlag,
		Level:   logging.ParseLevel(*logLevelFlag),
		Format:  *logFormatFlag,
	})

	db := database.New()
	defer db.Close()
	setupCloseHandler(db)

	r, err := repl.CombineRepls([]*repl.REPL{database.DatabaseRepl(db)})
	if err != nil {
		fmt.Println(err)
		return
	}
	clientId := uuid.New()
	logging.L.Info("repl started", "client", clientId.String())
	r.Run(clientId, config.GetPrompt(*promptFlag), nil, nil)
}
