package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/minios-linux/catsync/config"
	"github.com/minios-linux/catsync/i18n"
	"github.com/minios-linux/catsync/settings"
	"github.com/minios-linux/catsync/translate"
)

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage provider API keys"),
		Long: i18n.T(`Manage the API keys of the translation providers.

Keys are stored in $XDG_DATA_HOME/catsync/auth.json (mode 0600). A key given
with --api-key or found in the environment (DEEP_L_API_KEY, DEEPL_API_KEY,
OPENAI_API_KEY, CATSYNC_API_KEY, or a .env file in the project root) takes
precedence over the stored one.

Examples:
  catsync auth set-key deepl               Prompt for the DeepL key
  catsync auth set-key openai sk-...       Store an OpenAI key
  catsync auth remove deepl                Remove the DeepL key
  catsync auth remove                      Remove all keys
  catsync auth list                        Show stored keys`),
	}

	cmd.AddCommand(
		newAuthSetKeyCmd(),
		newAuthRemoveCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func providerIDs() []string {
	ids := make([]string, 0, 3)
	for id := range translate.DefaultProviders() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func completeProviders(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defaults := translate.DefaultProviders()
	out := make([]string, 0, len(defaults))
	for _, id := range providerIDs() {
		out = append(out, fmt.Sprintf("%s\t%s", id, defaults[id].Name))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func newAuthSetKeyCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:               "set-key PROVIDER [KEY]",
		Short:             i18n.T("Store an API key"),
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: completeProviders,
		RunE: func(cmd *cobra.Command, args []string) error {
			providerID := args[0]
			prov, ok := translate.DefaultProviders()[providerID]
			if !ok {
				return fmt.Errorf(i18n.T("unknown provider '%s' (available: %v)"), providerID, providerIDs())
			}

			var key string
			if len(args) == 2 {
				key = args[1]
			} else {
				existing := settings.GetAPIKey(providerID)
				prompt := i18n.T("  Enter API key: ")
				if existing != "" {
					fmt.Fprintf(stderr, "  %s %s\n", i18n.T("Current key:"), colorWarn.Sprint(settings.MaskKey(existing)))
					prompt = i18n.T("  Enter new key to replace, or press Enter to keep: ")
				}
				var err error
				key, err = promptLine(os.Stdin, prompt)
				if err != nil {
					return err
				}
				if key == "" {
					if existing != "" {
						logInfo("%s", i18n.T("Keeping existing key"))
						return nil
					}
					return fmt.Errorf("%s", i18n.T("no API key provided"))
				}
			}

			info := &settings.Info{Type: "api", Key: key, BaseURL: baseURL, AddedAt: time.Now().Unix()}
			if err := settings.Set(providerID, info); err != nil {
				return fmt.Errorf(i18n.T("saving API key: %w"), err)
			}
			logSuccess(i18n.T("%s API key saved to %s"), prov.Name, settings.FilePath())
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", i18n.T("Custom endpoint stored with the key"))
	return cmd
}

func newAuthRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "remove [PROVIDER]",
		Aliases:           []string{"rm", "logout"},
		Short:             i18n.T("Remove stored API keys (all when no provider is given)"),
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeProviders,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if settings.Get(args[0]) == nil {
					logInfo(i18n.T("No key stored for %s"), args[0])
					return nil
				}
				if err := settings.Remove(args[0]); err != nil {
					return fmt.Errorf(i18n.T("removing %s key: %w"), args[0], err)
				}
				logSuccess(i18n.T("%s key removed"), args[0])
				return nil
			}
			if err := settings.RemoveAll(); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("All stored keys removed"))
			return nil
		},
	}
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored API keys and environment overrides"),
		RunE: func(cmd *cobra.Command, args []string) error {
			heading(i18n.T("Stored API keys"))
			defaults := translate.DefaultProviders()
			for _, id := range providerIDs() {
				entry := settings.Get(id)
				if entry == nil || entry.Key == "" {
					fmt.Fprintf(stderr, "  %-10s %s\n", id, colorErr.Sprint(i18n.T("not configured")))
					continue
				}
				status := fmt.Sprintf("%s (%s)", colorOK.Sprint(i18n.T("configured")), settings.MaskKey(entry.Key))
				fmt.Fprintf(stderr, "  %-10s %s  %s\n", id, status, defaults[id].Name)
				if entry.BaseURL != "" {
					fmt.Fprintf(stderr, "  %10s endpoint: %s\n", "", entry.BaseURL)
				}
			}

			secrets, err := config.LoadSecrets(rootDir)
			if err != nil {
				return err
			}
			heading(i18n.T("Environment"))
			for _, v := range []struct{ name, value string }{
				{"DEEP_L_API_KEY", secrets.DeepLKey},
				{"DEEPL_API_KEY", secrets.DeepLKeyAlt},
				{"OPENAI_API_KEY", secrets.OpenAIKey},
				{"CATSYNC_API_KEY", secrets.GenericKey},
			} {
				if v.value == "" {
					fmt.Fprintf(stderr, "  %-16s %s\n", v.name, i18n.T("not set"))
					continue
				}
				fmt.Fprintf(stderr, "  %-16s %s %s\n", v.name, colorOK.Sprint(settings.MaskKey(v.value)), i18n.T("(overrides stored keys)"))
			}
			fmt.Fprintf(stderr, "\n  %s %s\n\n", i18n.T("File:"), settings.FilePath())
			return nil
		},
	}
}
