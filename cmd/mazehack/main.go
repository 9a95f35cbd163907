// mazehack is a terminal maze game: steer a dot through invisible walls
// with arrow keys that are reshuffled on every level.
//
// Usage:
//
//	mazehack play             - Play in this terminal
//	mazehack serve            - Start SSH server for remote play
//	mazehack levels           - List the loaded levels
//	mazehack scores           - Show the fastest runs
//
// Global flags:
//
//	--config <path>      - Config file (default: search ~/.mazehack, ./configs)
//	--levels <path>      - Level file or directory (default: bundled levels)
//	--seed <value>       - RNG seed for reproducible key mappings
//	--db <path>          - Score database path
//	--log-file <path>    - Log file used while playing
//	--broker <url>       - MQTT broker URL; enables event publishing
//	--difficulty <name>  - easy, normal or hard
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig     string
	flagLevels     string
	flagSeed       int64
	flagDBPath     string
	flagLogFile    string
	flagBroker     string
	flagDifficulty string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mazehack",
	Short: "Maze Hack - steer through invisible walls in your terminal",
	Long: `Maze Hack is a terminal maze game. A dot moves on its own across the
field; the arrow keys steer it, but which arrow means which direction is
shuffled at the start and on every new level. Touch a wall or leave the
field and the level restarts.

Available commands:
  play     - Play in this terminal
  serve    - Start SSH server for remote play
  levels   - List the loaded levels
  scores   - View the fastest runs

Examples:
  mazehack play
  mazehack play --difficulty hard --broker tcp://localhost:1883
  mazehack serve --ssh :2222 --spectate
  mazehack scores --tui`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLevels, "levels", "", "Level file or directory (default: bundled levels)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to scores database (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Log file for play mode (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagBroker, "broker", "", "MQTT broker URL; enables the broker")
	rootCmd.PersistentFlags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard")

	// Add subcommands
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(levelsCmd)
	rootCmd.AddCommand(scoresCmd)
}
