package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/abhisek/investiq/internal/settings"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View and change preferences",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings (the API key is masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		s, err := env.settings.Get(cmd.Context())
		if err != nil {
			return err
		}
		key := "(not set)"
		if s.HasAPIKey() {
			key = settings.MaskAPIKey(s.GeminiAPIKey)
		}
		fmt.Printf("gemini-api-key:        %s\n", key)
		fmt.Printf("show-explanation:      %v\n", s.ShowExplanationImmediately)
		fmt.Printf("shuffle-choices:       %v\n", s.ShuffleChoices)
		return nil
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Save a Gemini API key (reads stdin when no argument is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			fmt.Fprint(os.Stderr, "Gemini API key: ")
			sc := bufio.NewScanner(os.Stdin)
			if sc.Scan() {
				key = sc.Text()
			}
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		if err := env.settings.SaveAPIKey(cmd.Context(), key); err != nil {
			return err
		}
		fmt.Println("Saved API key", settings.MaskAPIKey(strings.TrimSpace(key)))
		return nil
	},
}

var settingsClearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "Remove the saved API key",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		if err := env.settings.ClearAPIKey(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("API key removed.")
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <show-explanation|shuffle-choices> <true|false>",
	Short: "Change a preference",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: want true or false", args[1])
		}

		var apply func(*settings.AppSettings)
		switch args[0] {
		case "show-explanation":
			apply = func(s *settings.AppSettings) { s.ShowExplanationImmediately = v }
		case "shuffle-choices":
			apply = func(s *settings.AppSettings) { s.ShuffleChoices = v }
		default:
			return fmt.Errorf("unknown setting %q", args[0])
		}

		env, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		if _, err := env.settings.Update(cmd.Context(), apply); err != nil {
			return err
		}
		fmt.Printf("%s = %v\n", args[0], v)
		return nil
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetKeyCmd)
	settingsCmd.AddCommand(settingsClearKeyCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
