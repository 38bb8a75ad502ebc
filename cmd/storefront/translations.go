package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/terpenos/storefront/internal/errors"
	"github.com/terpenos/storefront/pkg/i18n"
)

func translationsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "translations",
		Aliases: []string{"i18n"},
		Short:   "Inspect the translation table",
		Long: `Inspect the built-in translation table merged with the file named by
i18n.translations in the config.`,
	}

	cmd.AddCommand(
		translationsListCmd(configPath),
		translationsCheckCmd(configPath),
		translationsGetCmd(configPath),
	)
	return cmd
}

func loadTranslations(configPath string) (i18n.Table, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return translations(cfg)
}

func translationsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List languages and how many keys each translates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTranslations(*configPath)
			if err != nil {
				return err
			}
			missing := table.Missing()
			total := len(i18n.Keys())
			for _, lang := range table.Languages() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-6s %d/%d\n", lang, total-len(missing[lang]), total)
			}
			return nil
		},
	}
}

func translationsCheckCmd(configPath *string) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report keys without a string in some language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTranslations(*configPath)
			if err != nil {
				return err
			}
			missing := table.Missing()
			if len(missing) == 0 {
				success(cmd.OutOrStdout(), "All %d keys translated in %d languages", len(i18n.Keys()), len(table.Languages()))
				return nil
			}

			langs := make([]string, 0, len(missing))
			for lang := range missing {
				langs = append(langs, string(lang))
			}
			sort.Strings(langs)

			out := cmd.OutOrStdout()
			for _, lang := range langs {
				keys := missing[i18n.Language(lang)]
				fmt.Fprintf(out, "%s: %d missing (falls back to %s)\n", lang, len(keys), i18n.DefaultLanguage)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s\n", k)
				}
			}
			if strict {
				return errors.New("E142").WithDetail("missing keys in " + strings.Join(langs, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when any key is missing")
	return cmd
}

func translationsGetCmd(configPath *string) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "get KEY",
		Short: "Resolve a key the way the store does",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := loadTranslations(*configPath)
			if err != nil {
				return err
			}
			l := i18n.Language(lang)
			if !table.Has(l) {
				return errors.New("E141").WithDetail(`no language "` + lang + `" in the table`)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Resolve(l, i18n.Key(args[0])))
			return nil
		},
	}
	cmd.Flags().StringVarP(&lang, "lang", "l", string(i18n.DefaultLanguage), "Language to resolve in")
	return cmd
}
