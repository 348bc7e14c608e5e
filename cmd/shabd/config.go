package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/devpatel/shabd-ramat/internal/engine"
)

type Config struct {
	server  string
	name    string
	letterA string
	letterB string
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("SHABD")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "shabd",
		Short:         "Two-team Gujarati word game, played locally or against a relay server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.server, "server", "s", "http://localhost:8080", "relay server base url (env: SHABD_SERVER)")
	fs.StringVarP(&cfg.name, "name", "n", "Player", "display name for relay games (env: SHABD_NAME)")
	fs.StringVar(&cfg.letterA, "letter-a", engine.DefaultLetterA, "team A starting letter (env: SHABD_LETTER_A)")
	fs.StringVar(&cfg.letterB, "letter-b", engine.DefaultLetterB, "team B starting letter (env: SHABD_LETTER_B)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
