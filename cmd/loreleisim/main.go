package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/loreleisim/internal/config"
	"github.com/san-kum/loreleisim/internal/gb"
	"github.com/san-kum/loreleisim/internal/logging"
	"github.com/san-kum/loreleisim/internal/moves"
	"github.com/san-kum/loreleisim/internal/simulator"
	"github.com/san-kum/loreleisim/internal/telemetry"
	"github.com/san-kum/loreleisim/internal/tui"
)

var (
	jobs        int
	trials      uint64
	seed        uint64
	coreName    string
	quiet       bool
	refreshMs   int
	logLevel    string
	metricsAddr string
	configFile  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "loreleisim",
		Short: "parallel battle-AI move simulator for Game Boy Pokémon games",
	}

	runCmd := &cobra.Command{
		Use:   "run ROM SAVESTATE",
		Short: "run trials and report the AI's move distribution",
		Args:  cobra.ExactArgs(2),
		RunE:  runSimulation,
	}
	runCmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "worker threads, 0 = all CPUs")
	runCmd.Flags().Uint64VarP(&trials, "trials", "t", 0, "trial ceiling, 0 = run until stopped")
	runCmd.Flags().Uint64Var(&seed, "seed", 0, "base random seed, 0 = random")
	runCmd.Flags().StringVar(&coreName, "core", "", "emulator core name")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no live output until finished")
	runCmd.Flags().IntVar(&refreshMs, "refresh", config.DefaultRefreshMillis, "live view refresh interval (ms)")
	runCmd.Flags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (error, warn, info, debug)")
	runCmd.Flags().StringVar(&metricsAddr, "metrics", "", "serve prometheus metrics on this address")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	infoCmd := &cobra.Command{
		Use:   "info ROM SAVESTATE",
		Short: "show the detected game, hardware model, and available cores",
		Args:  cobra.ExactArgs(2),
		RunE:  showInfo,
	}

	movesCmd := &cobra.Command{
		Use:   "moves [ID...]",
		Short: "look up move names by ID",
		RunE:  listMoves,
	}

	rootCmd.AddCommand(runCmd, infoCmd, movesCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// mergeConfig builds the effective run configuration: the config file (if
// any) over defaults, then explicitly set flags over both.
func mergeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if flags.Changed("jobs") {
		cfg.Jobs = jobs
	}
	if flags.Changed("trials") {
		cfg.Trials = trials
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("core") {
		cfg.Core = coreName
	}
	if flags.Changed("quiet") {
		cfg.Quiet = quiet
	}
	if flags.Changed("refresh") {
		cfg.RefreshMillis = refreshMs
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("metrics") {
		cfg.MetricsAddr = metricsAddr
	}
	return cfg, cfg.Validate()
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := mergeConfig(cmd)
	if err != nil {
		return err
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)

	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}
	save, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read save state: %w", err)
	}

	gen, err := gb.NewGenerator(rom, save, cfg.Core)
	if err != nil {
		if errors.Is(err, gb.ErrNoCore) {
			return fmt.Errorf("%w; build with an emulator core binding that calls gb.RegisterCore", err)
		}
		return err
	}

	sim, err := simulator.New(rom, save, gen, simulator.Options{
		Trials: cfg.Trials,
		Seed:   cfg.Seed,
	})
	if err != nil {
		return err
	}
	defer sim.Close()

	if cfg.MetricsAddr != "" {
		srv := telemetry.Serve(cfg.MetricsAddr, sim)
		defer srv.Close()
		logger.Info("serving metrics", "addr", cfg.MetricsAddr)
	}

	logger.Info("detected game",
		"game", gen.Game().String(),
		"model", gen.Model().String())

	start := time.Now()
	sim.Start(cfg.Jobs)
	logger.Info("simulating", "threads", sim.Threads(), "trials", cfg.Trials)

	userStopped := false
	if cfg.Quiet {
		waitQuiet(sim, cfg.Refresh())
	} else {
		view := tui.New(sim, gen.Game().String(), cfg.Refresh())
		final, err := tea.NewProgram(view).Run()
		sim.Stop()
		if err != nil {
			return err
		}
		if m, ok := final.(tui.Model); ok {
			userStopped = m.Stopped()
		}
	}

	elapsed := time.Since(start).Round(time.Second)
	count := sim.TrialCount()
	if count == 0 {
		logger.Info("cancelled before any trial completed")
		return nil
	}
	msg := "finished"
	if userStopped {
		msg = "stopped"
	}
	logger.Info(msg, "trials", count, "elapsed", elapsed.String())
	return printSummary(os.Stdout, sim)
}

// waitQuiet blocks until the run ends naturally or the process is
// interrupted, then quiesces the simulator.
func waitQuiet(sim *simulator.Simulator, poll time.Duration) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for sim.IsRunning() {
		select {
		case <-ctx.Done():
			sim.Stop()
			return
		case <-ticker.C:
		}
	}
	sim.Stop()
}

func printSummary(w io.Writer, sim *simulator.Simulator) error {
	results := sim.Results()
	var total uint64
	for _, oc := range results {
		total += oc.Count
	}
	if total == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "\nMOVE\tCOUNT\t%%\n")
	for _, oc := range results {
		name, ok := moves.Name(uint8(oc.Outcome))
		if !ok {
			name = fmt.Sprintf("UNK (0x%02X)", uint8(oc.Outcome))
		}
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", name, oc.Count, 100*float64(oc.Count)/float64(total))
	}
	fmt.Fprintf(tw, "TOTAL\t%d\t\n", total)
	return tw.Flush()
}

func showInfo(cmd *cobra.Command, args []string) error {
	rom, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read rom: %w", err)
	}
	save, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("read save state: %w", err)
	}

	game, err := gb.DetectGame(rom)
	if err != nil {
		return err
	}
	model, err := gb.DetectModel(save)
	if err != nil {
		return err
	}

	fmt.Printf("game:  %s\n", game)
	fmt.Printf("model: %s\n", model)
	if cores := gb.Cores(); len(cores) > 0 {
		fmt.Printf("cores: %v\n", cores)
	} else {
		fmt.Println("cores: none registered")
	}
	return nil
}

func listMoves(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	if len(args) == 0 {
		for id := 0; id < 256; id++ {
			if name, ok := moves.Name(uint8(id)); ok {
				fmt.Fprintf(tw, "%d\t%s\n", id, name)
			}
		}
		return nil
	}
	for _, arg := range args {
		id, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return fmt.Errorf("invalid move id %q: %w", arg, err)
		}
		name, ok := moves.Name(uint8(id))
		if !ok {
			name = "unknown"
		}
		fmt.Fprintf(tw, "%d\t%s\n", id, name)
	}
	return nil
}
