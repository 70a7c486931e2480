package main

import (
	"flag"
	"fmt"
	"log/slog"
	"strings"
)

// logLevelFlag is a command line flag for setting the log level.
// An unset flag leaves the level to the user's setting.
type logLevelFlag struct {
	isSet bool
	value slog.Level
}

func (l *logLevelFlag) String() string {
	return l.value.String()
}

func (l *logLevelFlag) Set(value string) error {
	m := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"WARNING": slog.LevelWarn,
		"ERROR":   slog.LevelError,
	}
	v, ok := m[strings.ToUpper(value)]
	if !ok {
		return fmt.Errorf("unknown log level: %s", value)
	}
	l.value = v
	l.isSet = true
	return nil
}

// defined flags
var (
	levelFlag     logLevelFlag
	debugFlag     = flag.Bool("debug", false, "Show additional debug information")
	logFileFlag   = flag.Bool("logfile", true, "Write logs to a file instead of the console")
	offlineFlag   = flag.Bool("offline", false, "Start the app in offline mode")
	showDirsFlag  = flag.Bool("show-dirs", false, "Show directories where user data is stored")
	uninstallFlag = flag.Bool("uninstall", false, "Uninstalls the app by deleting all user files")
)

func init() {
	levelFlag.value = slog.LevelInfo
	flag.Var(&levelFlag, "loglevel", "set log level")
}
