package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/nabbar/networkd/logger"
)

// WatchLogLevel watches the config file backing v for changes and applies
// log.SetLevel whenever the on-disk log-level setting changes, so an
// operator can raise or lower verbosity without restarting the daemon. It
// is a no-op if v was never pointed at a config file.
//
// This only reaches into the one field safe to change live: the listening
// socket, privilege-drop target and write directory all require a restart
// to take effect, since the supervisor has already bound, forked and
// dropped privileges around their startup values by the time a file change
// could be observed.
func WatchLogLevel(v *viper.Viper, log logger.Logger) {
	if v.ConfigFileUsed() == "" {
		return
	}

	v.OnConfigChange(func(fsnotify.Event) {
		lvl := logger.GetLevelString(v.GetString("log-level"))
		log.SetLevel(lvl)
		log.Info("log level reloaded from config file", logger.Fields{"level": lvl.String()})
	})
	v.WatchConfig()
}
