package cmd

import (
	"fmt"

	"github.com/learnsphere/client/internal/logger"
	"github.com/spf13/cobra"
)

var sessionOffline bool

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the current session",
	Long: `Check the session with the backend and show who is logged in.
With --offline the cached session is shown without contacting the backend.`,
	Args: cobra.NoArgs,
	RunE: runSession,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	Long:  `Log out from the backend. The local session is cleared even if the backend cannot be reached.`,
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	sessionCmd.Flags().BoolVar(&sessionOffline, "offline", false, "show the cached session only")
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(cmd.Context(), cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer a.close()

	if !sessionOffline {
		a.session.FetchSession(cmd.Context())
	}

	fmt.Fprint(cmd.OutOrStdout(), renderSession(a.session.State()))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	a, err := newApp(cmd.Context(), cfg, logger.Logger)
	if err != nil {
		return err
	}
	defer a.close()

	fmt.Fprint(cmd.OutOrStdout(), renderOutcome(a.session.Logout(cmd.Context())))
	return nil
}
