package cmd

import (
	"fmt"

	"github.com/learnsphere/client/internal/logger"
	"github.com/spf13/cobra"
)

var autoplayCmd = &cobra.Command{
	Use:       "autoplay [on|off|toggle]",
	Short:     "Show or change the autoplay preference",
	Long:      `Without an argument the stored autoplay preference is shown. It applies to every lecture page.`,
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"on", "off", "toggle"},
	RunE:      runAutoplay,
}

func init() {
	rootCmd.AddCommand(autoplayCmd)
}

func runAutoplay(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		enabled := autoplayValue(args[0], a.prefs.Autoplay())
		if err := a.prefs.SetAutoplay(cmd.Context(), enabled); err != nil {
			return err
		}
	}

	fmt.Fprint(cmd.OutOrStdout(), renderAutoplay(a.prefs.Autoplay()))
	return nil
}

// autoplayValue resolves an autoplay argument against the current value
func autoplayValue(arg string, current bool) bool {
	switch arg {
	case "on":
		return true
	case "off":
		return false
	}
	return !current
}
