package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/mazehack/internal/config"
	"github.com/vovakirdan/mazehack/internal/platform/tui"
	"github.com/vovakirdan/mazehack/internal/storage"
)

var (
	flagScoresTUI   bool
	flagScoresLimit int
	flagScoresClear bool
	flagScoresRun   string
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the fastest runs",
	Long: `Display the fastest completed runs and summary statistics.

Examples:
  mazehack scores
  mazehack scores --limit 25
  mazehack scores --tui      # Interactive board with per-level bests
  mazehack scores --run <id> # Per-level splits of one run
  mazehack scores --clear    # Delete all recorded runs`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresTUI, "tui", false, "Show the interactive leaderboard")
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of runs to show")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete all recorded runs")
	scoresCmd.Flags().StringVar(&flagScoresRun, "run", "", "Show the level splits of one run")
}

func runScores(_ *cobra.Command, _ []string) {
	cfg, lvls := mustLoad()

	store, err := storage.Open(config.ExpandHome(cfg.Storage.DB))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if flagScoresClear {
		if err := store.ClearRuns(); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing runs: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("All runs deleted.")
		return
	}

	if flagScoresRun != "" {
		if err := writeRunDetail(os.Stdout, store, flagScoresRun); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flagScoresTUI {
		width, height := 80, 24
		if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
			width, height = w, h
		}
		if err := tui.RunScoreboard(store, lvls, width, height); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	runs, err := store.TopRuns(flagScoresLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving runs: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Fastest runs - Maze Hack")
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("  No runs recorded yet.")
		return
	}

	fmt.Printf("  %-4s  %-14s  %9s  %6s  %-16s  %s\n", "Rank", "Player", "Time", "Resets", "Date", "Run")
	fmt.Printf("  %-4s  %-14s  %9s  %6s  %-16s  %s\n", "----", "------", "----", "------", "----", "---")
	for i, r := range runs {
		fmt.Printf("  #%-3d  %-14s  %8.2fs  %6d  %-16s  %s\n",
			i+1, r.Player, r.Duration().Seconds(), r.Resets, r.CompletedAt.Format("2006-01-02 15:04"), r.RunID)
	}

	stats, err := store.GetStats()
	if err != nil {
		return
	}
	fmt.Println()
	fmt.Printf("  %d runs, average %.1f ticks and %.1f resets, last played %s\n",
		stats.Runs, stats.AvgTicks, stats.AvgResets, stats.LastPlayed.Format(time.DateTime))
}

// runLookup is the part of the store that writeRunDetail reads.
type runLookup interface {
	RunByID(runID string) (*storage.Run, error)
	LevelTimes(runID string) ([]storage.LevelTime, error)
}

// writeRunDetail prints one run and its per-level splits.
func writeRunDetail(w io.Writer, store runLookup, runID string) error {
	run, err := store.RunByID(runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no run with id %s", runID)
	}
	times, err := store.LevelTimes(runID)
	if err != nil {
		return err
	}

	tick := time.Duration(run.TickMS) * time.Millisecond
	fmt.Fprintf(w, "Run %s\n", run.RunID)
	fmt.Fprintf(w, "  Player: %s\n", run.Player)
	fmt.Fprintf(w, "  Time:   %.2fs (%d ticks, %d resets)\n", run.Duration().Seconds(), run.Ticks, run.Resets)
	fmt.Fprintf(w, "  Date:   %s\n\n", run.CompletedAt.Format(time.DateTime))

	fmt.Fprintf(w, "  %3s  %-16s  %9s  %6s\n", "#", "Level", "Time", "Resets")
	for _, lt := range times {
		fmt.Fprintf(w, "  %3d  %-16s  %8.2fs  %6d\n",
			lt.LevelIndex+1, lt.LevelID, (time.Duration(lt.Ticks) * tick).Seconds(), lt.Resets)
	}
	return nil
}
