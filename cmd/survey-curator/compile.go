package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"survey-curator/internal/i18n"
	"survey-curator/internal/template"
)

func compileCmd(a *app) *cobra.Command {
	var (
		lang      string
		fallbacks []string
		output    string
	)

	cmd := &cobra.Command{
		Use:   "compile <template>",
		Short: "Project a multi-language template to one language",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !i18n.IsLanguageTag(lang) {
				return fmt.Errorf("--lang: %q is not a language tag", lang)
			}

			tpl, err := template.Load(args[0])
			if err != nil {
				return err
			}

			compiled, err := i18n.Compile(tpl, lang, fallbacks)
			if err != nil {
				return err
			}

			if output != "" {
				if err := template.Save(compiled, output); err != nil {
					return err
				}

				a.logger.Info("Compiled template", "path", output, "language", lang)

				return nil
			}

			data, err := template.Encode(compiled, tpl.Format)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Target language")
	cmd.Flags().StringSliceVar(&fallbacks, "fallback", []string{"en"}, "Fallback languages in order")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	_ = cmd.MarkFlagRequired("lang")

	return cmd
}
