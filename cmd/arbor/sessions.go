package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	redisAdapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect sessions shared through Redis",
}

var sessionsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List live sessions, soonest to expire first",
	RunE: func(cmd *cobra.Command, args []string) error {
		index, closeIndex, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer closeIndex()

		infos, err := index.List(cmd.Context())
		if err != nil {
			return err
		}
		printSessions(cmd, infos, time.Now())
		return nil
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>...",
	Short: "Drop sessions from the shared index",
	Long: `Removes index entries. Live sessions held by a server are unaffected and
reappear on their next request.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, closeIndex, err := openIndex(cmd)
		if err != nil {
			return err
		}
		defer closeIndex()

		for _, id := range args {
			if err := index.Remove(cmd.Context(), id); err != nil {
				return fmt.Errorf("failed to remove %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", id)
		}
		return nil
	},
}

// openIndex connects to the configured Redis index.
func openIndex(cmd *cobra.Command) (*redisAdapter.Index, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Redis.Addr == "" {
		return nil, nil, fmt.Errorf("%s requires redis.addr in %s", cmd.CommandPath(), cmd.Flag("config").Value)
	}
	client, err := newRedisClient(cmd.Context(), cfg)
	if err != nil {
		return nil, nil, err
	}
	index := redisAdapter.NewIndex(client, redisAdapter.WithPrefix(cfg.Redis.Prefix))
	return index, func() { _ = client.Close() }, nil
}

func printSessions(cmd *cobra.Command, infos []ports.SessionInfo, now time.Time) {
	if len(infos) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No active sessions.")
		return
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SESSION\tEXPIRES IN")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\n", info.ID, info.ExpiresAt.Sub(now).Round(time.Second))
	}
	w.Flush()
}

func init() {
	sessionsCmd.AddCommand(sessionsLsCmd, sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}
