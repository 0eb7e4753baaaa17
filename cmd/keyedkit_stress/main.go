package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keyedkit/pkg/database"
	"keyedkit/pkg/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Name of the container every workload runs against.
const CONTAINER = "t"

// Parse workload
func parseWorkload(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var workload []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		workload = append(workload, scanner.Text())
	}
	return workload, scanner.Err()
}

// generateWorkload returns n random commands over keys in [0, keyspace).
// Sets get value-less inserts.
func generateWorkload(r *rand.Rand, n int, keyspace int64, isSet bool) []string {
	workload := make([]string, n)
	for i := range workload {
		key := r.Int63n(keyspace)
		switch op := r.Intn(10); {
		case op < 5 && isSet:
			workload[i] = fmt.Sprintf("insert %d into %s", key, CONTAINER)
		case op < 5:
			workload[i] = fmt.Sprintf("insert %d %d into %s", key, r.Int63(), CONTAINER)
		case op < 8:
			workload[i] = fmt.Sprintf("erase %d from %s", key, CONTAINER)
		default:
			workload[i] = fmt.Sprintf("find %d from %s", key, CONTAINER)
		}
	}
	return workload
}

// Get delay jitter.
func jitter(maxDelay int64) time.Duration {
	if maxDelay <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(maxDelay)+1) * time.Millisecond
}

// handleWorkload sends every n-th command, starting at idx, to c.
func handleWorkload(ctx context.Context, c chan<- string, workload []string, idx, n int, maxDelay int64) error {
	for i := idx; i < len(workload); i += n {
		time.Sleep(jitter(maxDelay))
		select {
		case c <- workload[i]:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Run a workload against a fresh container.
func main() {
	// Set up flags.
	var backendFlag = flag.String("index", "", "choose backend: [tree,hash] (required)")
	var modeFlag = flag.String("mode", "table", "choose mode: [set,table]")
	var hasherFlag = flag.String("hasher", "", "hash backend hasher: [djb2,xxhash,murmur]")
	var workloadFlag = flag.String("workload", "", "workload file; a random workload is generated if empty")
	var opsFlag = flag.Int("ops", 10000, "number of generated commands")
	var keyspaceFlag = flag.Int64("keys", 1000, "size of the generated key space")
	var seedFlag = flag.Int64("seed", 1, "seed for the generated workload")
	var nFlag = flag.Int("n", 1, "number of goroutines feeding the REPL")
	var delayFlag = flag.Int64("delay", 0, "maximum jitter per command, in milliseconds")
	var verifyFlag = flag.Bool("verify", false, "enable to verify container invariants at the end of the workload")
	var quietFlag = flag.Bool("q", false, "discard REPL output")
	var logFlag = flag.Bool("log", false, "enable debug logging to stderr")
	flag.Parse()

	logging.Init(logging.Options{Enabled: *logFlag, Level: logging.ParseLevel("debug")})

	// Create the container.
	db := database.New()
	defer db.Close()
	create := []string{"create", *backendFlag, *modeFlag, CONTAINER}
	if *hasherFlag != "" {
		create = append(create, *hasherFlag)
	}
	if _, err := database.HandleCreate(db, create); err != nil {
		fmt.Println(err)
		fmt.Println("must specify -index [tree,hash] and -mode [set,table]")
		os.Exit(1)
	}
	container, err := db.GetContainer(CONTAINER)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	// Load or generate the workload.
	var workload []string
	if *workloadFlag != "" {
		if workload, err = parseWorkload(*workloadFlag); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	} else {
		r := rand.New(rand.NewSource(*seedFlag))
		workload = generateWorkload(r, *opsFlag, *keyspaceFlag, container.Layout().IsSet())
	}

	var output io.Writer = os.Stdout
	if *quietFlag {
		output = io.Discard
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The REPL evaluates commands one at a time; the feeders only race to send.
	c := make(chan string)
	done := make(chan struct{})
	go func() {
		database.DatabaseRepl(db).RunChan(c, uuid.New(), "", output)
		close(done)
	}()

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < *nFlag; i++ {
		i := i
		g.Go(func() error {
			return handleWorkload(gctx, c, workload, i, *nFlag, *delayFlag)
		})
	}
	err = g.Wait()
	close(c)
	<-done
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	logging.L.Info("workload finished", "container", CONTAINER, "commands", len(workload),
		"elapsed", time.Since(start), "size", container.Size())

	// Verify the structure of the container.
	if *verifyFlag {
		if err := container.Verify(); err != nil {
			fmt.Println("verify failed:", err)
			os.Exit(1)
		}
		fmt.Printf("%s verified: %d elements\n", container.Kind(), container.Size())
	}
}
