package cmd

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/GPCSantosh/RealTime-Mem-Allocator/paging"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/recording"
	"github.com/GPCSantosh/RealTime-Mem-Allocator/simulation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and run the simulation.",
	Long: "`serve` builds a paging simulation and serves its dashboard " +
		"until interrupted. The event history goes to a local SQLite file " +
		"unless a ClickHouse address is given.",
	Run: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 5000, "Port for the dashboard server")
	serveCmd.Flags().Int("capacity-kb", 1024, "Physical memory size in KB")
	serveCmd.Flags().Int("frame-kb", 64, "Frame size in KB")
	serveCmd.Flags().String("algorithm", "FIFO",
		"Replacement algorithm, FIFO or LRU")
	serveCmd.Flags().Int64("seed", 0,
		"Workload seed, 0 seeds from the clock")
	serveCmd.Flags().Duration("interval", 0,
		"Workload stepping interval, e.g. 250ms. 0 keeps the default")
	serveCmd.Flags().Bool("run", false, "Start the workload loop right away")
	serveCmd.Flags().Bool("open", false, "Open the dashboard in a browser")

	serveCmd.Flags().String("output", "",
		"SQLite output file name without extension")
	serveCmd.Flags().Bool("no-record", false,
		"Do not record the event history")
	serveCmd.Flags().String("clickhouse", "",
		"ClickHouse address, e.g. localhost:9000")
	serveCmd.Flags().String("clickhouse-database", "",
		"ClickHouse database name")
	serveCmd.Flags().String("clickhouse-username", "",
		"ClickHouse user name")
	serveCmd.Flags().String("clickhouse-password", "",
		"ClickHouse password")
}

func runServe(cmd *cobra.Command, _ []string) {
	builder := buildFromFlags(cmd)

	s := builder.Build()

	s.SetRunning(mustGetBool(cmd, "run"), mustGetDuration(cmd, "interval"))

	if mustGetBool(cmd, "open") {
		url := fmt.Sprintf("http://localhost:%d", s.Monitor().Port())
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open the dashboard: %s\n", err)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	s.Terminate()
	atexit.Exit(0)
}

func buildFromFlags(cmd *cobra.Command) simulation.Builder {
	builder := simulation.MakeBuilder().
		WithCapacityKB(mustGetInt(cmd, "capacity-kb")).
		WithFrameKB(mustGetInt(cmd, "frame-kb")).
		WithMonitorPort(dashboardPort(cmd))

	algorithm, err := paging.ParseAlgorithm(mustGetString(cmd, "algorithm"))
	if err != nil {
		log.Fatal(err)
	}
	builder = builder.WithAlgorithm(algorithm)

	if seed := mustGetInt64(cmd, "seed"); seed != 0 {
		builder = builder.WithSeed(seed)
	}

	return applyRecordingFlags(cmd, builder)
}

// dashboardPort resolves the server port, letting MEMTRACK_PORT stand in
// when the flag is left at its default.
func dashboardPort(cmd *cobra.Command) int {
	if !cmd.Flags().Changed("port") {
		if env := os.Getenv("MEMTRACK_PORT"); env != "" {
			port, err := strconv.Atoi(env)
			if err != nil {
				log.Fatalf("invalid MEMTRACK_PORT %q", env)
			}

			return port
		}
	}

	return mustGetInt(cmd, "port")
}

func applyRecordingFlags(
	cmd *cobra.Command,
	builder simulation.Builder,
) simulation.Builder {
	if mustGetBool(cmd, "no-record") {
		return builder.WithoutRecording()
	}

	addr := flagOrEnv(cmd, "clickhouse", "MEMTRACK_CLICKHOUSE_ADDR")
	if addr != "" {
		return builder.WithClickHouse(recording.ClickHouseOptions{
			Addr: addr,
			Database: flagOrEnv(cmd,
				"clickhouse-database", "MEMTRACK_CLICKHOUSE_DATABASE"),
			Username: flagOrEnv(cmd,
				"clickhouse-username", "MEMTRACK_CLICKHOUSE_USERNAME"),
			Password: flagOrEnv(cmd,
				"clickhouse-password", "MEMTRACK_CLICKHOUSE_PASSWORD"),
		})
	}

	if output := mustGetString(cmd, "output"); output != "" {
		return builder.WithOutputFileName(output)
	}

	return builder
}

// flagOrEnv prefers an explicit flag over the environment, which godotenv
// may have filled from a .env file.
func flagOrEnv(cmd *cobra.Command, flag, envName string) string {
	v := mustGetString(cmd, flag)
	if v != "" {
		return v
	}

	return os.Getenv(envName)
}

func mustGetInt(cmd *cobra.Command, name string) int {
	v, err := cmd.Flags().GetInt(name)
	if err != nil {
		log.Fatal(err)
	}

	return v
}

func mustGetInt64(cmd *cobra.Command, name string) int64 {
	v, err := cmd.Flags().GetInt64(name)
	if err != nil {
		log.Fatal(err)
	}

	return v
}

func mustGetString(cmd *cobra.Command, name string) string {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		log.Fatal(err)
	}

	return v
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		log.Fatal(err)
	}

	return v
}

func mustGetDuration(cmd *cobra.Command, name string) time.Duration {
	v, err := cmd.Flags().GetDuration(name)
	if err != nil {
		log.Fatal(err)
	}

	return v
}
