package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/mazehack/internal/games/maze/levels"
)

var flagLevelsExport string

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List the loaded levels",
	Long: `Shows the levels a game would use, after the --levels path and
difficulty are applied. With --export the list is written out as a
bundle file that --levels accepts.`,
	Args: cobra.NoArgs,
	Run:  runLevels,
}

func init() {
	levelsCmd.Flags().StringVar(&flagLevelsExport, "export", "", "Write the levels to a bundle file")
}

func runLevels(_ *cobra.Command, _ []string) {
	cfg, lvls := mustLoad()

	if flagLevelsExport != "" {
		data, err := levels.Export(lvls)
		if err == nil {
			err = os.WriteFile(flagLevelsExport, data, 0o644)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting levels: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d levels to %s\n", len(lvls), flagLevelsExport)
		return
	}

	fmt.Printf("Levels (difficulty: %s):\n\n", cfg.Game.Difficulty)

	// Calculate column widths
	maxIDLen, maxNameLen := 2, 4
	for _, l := range lvls {
		maxIDLen = max(maxIDLen, len(l.ID))
		maxNameLen = max(maxNameLen, len(l.Name))
	}

	fmt.Printf("  %3s  %-*s  %-*s  %5s  %6s  %-11s  %-16s\n",
		"#", maxIDLen, "ID", maxNameLen, "Name", "Walls", "Speed", "Start", "End")
	for i, l := range lvls {
		fmt.Printf("  %3d  %-*s  %-*s  %5d  %6.1f  %-11s  %-16s\n",
			i+1, maxIDLen, l.ID, maxNameLen, l.Name, len(l.Walls), l.Speed,
			fmt.Sprintf("%.0f,%.0f", l.Start.X, l.Start.Y),
			fmt.Sprintf("%.0f,%.0f @%.0f°", l.End.X, l.End.Y, l.End.Rotation),
		)
	}

	fmt.Println()
	fmt.Println("Run 'mazehack play' to play them.")
}
