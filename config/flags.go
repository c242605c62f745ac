package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BindFlags registers this daemon's command-line surface on cmd and binds
// each flag into v under the mapstructure key Load expects, so a flag, an
// environment variable and a config file entry for the same setting all
// resolve through the one viper instance.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.Flags()

	flags.StringP("socket", "s", DefaultSocketPath, "path to the control socket")
	flags.String("socket-mode", "0660", "octal permission bits applied to the control socket")
	flags.StringP("user", "u", DefaultUser, "unprivileged user the supervisor drops to")
	flags.String("group", DefaultGroup, "unprivileged group the supervisor drops to")
	flags.String("log-level", DefaultLogLevel, "log level: debug, info, warn, error, fatal")
	flags.String("ifconfig-path", DefaultIfconfig, "path to the ifconfig(8) binary")
	flags.String("netstart-path", DefaultNetstart, "path to the netstart script")
	flags.String("logevent-path", DefaultLogEvent, "path to the loghwevent helper")
	flags.String("write-dir", "/etc", "directory hostname.<iface> files are written under")
	flags.String("config", "", "path to an optional config file")

	for flag, key := range map[string]string{
		"socket":        "socket-path",
		"socket-mode":   "socket-mode",
		"user":          "user",
		"group":         "group",
		"log-level":     "log-level",
		"ifconfig-path": "ifconfig-path",
		"netstart-path": "netstart-path",
		"logevent-path": "logevent-path",
		"write-dir":     "write-dir",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return err
		}
	}

	return nil
}

// ConfigFilePath reads back the --config flag bound by BindFlags.
func ConfigFilePath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}
