// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server over the workout store.
package main

import (
	"os/signal"
	"syscall"

	"github.com/harperreed/lift/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the workout store over MCP (stdio)",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server speaks JSON-RPC over stdin/stdout and shares the workout store
with the CLI, so workouts logged by an assistant show up in "lift workout"
and vice versa. Only one workout can be in progress at a time.

CLIENT CONFIGURATION:

  Register lift as a stdio server in your MCP client, for example:

  {
    "mcpServers": {
      "lift": {
        "command": "lift",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  search_exercises             Full-text search of exercise names
  find_exercises               Filter exercises by muscle, level, equipment, category
  get_exercise                 Exercise details with muscles and instructions
  get_ongoing_workout          Workout in progress with sets
  start_workout                Start an empty workout
  start_workout_from_template  Start a workout from a template
  add_exercises                Append exercises, optionally seeded from history
  add_set                      Append a set to a workout exercise
  finish_workout               Finish a workout
  list_templates               Templates with exercises and set counts
  get_muscles                  Muscles trained by a workout or exercises

AVAILABLE RESOURCES:

  lift://workout/ongoing       Workout in progress with previous sets
  lift://templates             Template summaries`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(store, version)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
