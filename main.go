// Itembuddy is a desktop overlay which shows configurable tables
// with the items and currencies of the characters of a game account.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/juju/mutex/v2"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ErikKalkoken/itembuddy/internal/app/characterservice"
	"github.com/ErikKalkoken/itembuddy/internal/app/datatool"
	"github.com/ErikKalkoken/itembuddy/internal/app/favorites"
	"github.com/ErikKalkoken/itembuddy/internal/app/iconservice"
	"github.com/ErikKalkoken/itembuddy/internal/app/ipcbridge"
	"github.com/ErikKalkoken/itembuddy/internal/app/itemcatalog"
	"github.com/ErikKalkoken/itembuddy/internal/app/pcache"
	"github.com/ErikKalkoken/itembuddy/internal/app/priceservice"
	"github.com/ErikKalkoken/itembuddy/internal/app/settings"
	"github.com/ErikKalkoken/itembuddy/internal/app/storage"
	"github.com/ErikKalkoken/itembuddy/internal/app/toolpresets"
	"github.com/ErikKalkoken/itembuddy/internal/app/toolregistry"
	"github.com/ErikKalkoken/itembuddy/internal/app/ui"
	"github.com/ErikKalkoken/itembuddy/internal/memcache"
)

const (
	appID                 = "io.github.erikkalkoken.itembuddy"
	bridgePingDelay       = 5 * time.Second
	iconCacheTimeout      = 30 * 24 * time.Hour
	mutexName             = "itembuddy"
	pcacheCleanUpInterval = time.Hour
)

// realClock is the clock used for acquiring the single instance mutex.
type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

func (realClock) Now() time.Time {
	return time.Now()
}

func main() {
	flag.Parse()
	fyneApp := fyneapp.NewWithID(appID)
	ad := newAppDirs(fyneApp)
	if *showDirsFlag {
		fmt.Printf("Database: %s\n", ad.data)
		fmt.Printf("Cache: %s\n", ad.cache)
		fmt.Printf("Logs: %s\n", ad.log)
		fmt.Printf("Settings: %s\n", ad.settings)
		return
	}
	if *uninstallFlag {
		fmt.Print("Are you sure you want to uninstall this app and delete all user files (y/N)?")
		var input string
		fmt.Scanln(&input)
		if strings.ToLower(input) == "y" {
			if err := ad.deleteAll(); err != nil {
				log.Fatal(err)
			}
			fmt.Println("App uninstalled")
		} else {
			fmt.Println("Aborted")
		}
		return
	}

	// logging
	s := settings.New(fyneApp.Preferences())
	switch {
	case *debugFlag:
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case levelFlag.isSet:
		slog.SetLogLoggerLevel(levelFlag.value)
	default:
		slog.SetLogLoggerLevel(s.LogLevelSlog())
	}
	if *logFileFlag {
		fn, err := ad.initLogFile()
		if err != nil {
			log.Fatal(err)
		}
		log.SetOutput(&lumberjack.Logger{
			Filename:   fn,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
		})
	}

	// single instance
	r, err := mutex.Acquire(mutex.Spec{
		Name:    mutexName,
		Clock:   realClock{},
		Delay:   50 * time.Millisecond,
		Timeout: 250 * time.Millisecond,
	})
	if err != nil {
		slog.Error("Another instance is already running", "error", err)
		fmt.Fprintln(os.Stderr, "Itembuddy is already running")
		os.Exit(1)
	}
	defer r.Release()

	// storage
	dsn, err := ad.initDSN()
	if err != nil {
		log.Fatal(err)
	}
	dbRW, dbRO, err := storage.InitDB(dsn)
	if err != nil {
		log.Fatalf("Failed to initialize database %s: %s", dsn, err)
	}
	defer dbRW.Close()
	defer dbRO.Close()
	st := storage.New(dbRW, dbRO)
	cache := memcache.New()
	defer cache.Close()
	pc := pcache.New(st, pcacheCleanUpInterval)
	defer pc.Close()

	// HTTP
	rhc := retryablehttp.NewClient()
	rhc.HTTPClient.Timeout = 30 * time.Second
	rhc.Logger = slog.Default()
	rhc.ResponseLogHook = logResponse

	// services
	var bridge *ipcbridge.Client
	if !*offlineFlag {
		bridge = ipcbridge.New(s.BridgeURL(), rhc)
	}
	csArg := characterservice.Params{
		Cache:    cache,
		Settings: s,
		Storage:  st,
	}
	if bridge != nil {
		csArg.Bridge = bridge
	}
	cs := characterservice.New(csArg)
	catalog, err := itemcatalog.New()
	if err != nil {
		log.Fatalf("Failed to load item catalog: %s", err)
	}
	svc := datatool.Services{
		Config:    s,
		Currency:  cs,
		Data:      cs,
		Favorites: favorites.New(s),
		Inventory: cs,
		Items:     catalog,
		Prices: priceservice.New(priceservice.Params{
			Cache:      cache,
			HTTPClient: rhc.StandardClient(),
			IsOffline:  *offlineFlag,
			Storage:    st,
			World:      s.MarketWorld,
		}),
		Textures: iconservice.New(iconservice.Params{
			Cache:     cache,
			HTTPCache: pc.HTTPCache("icons-", iconCacheTimeout),
			Transport: rhc.StandardClient().Transport,
			IsOffline: *offlineFlag,
		}),
		Tracked: cs,
	}
	if bridge != nil {
		svc.Bridge = bridge
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), bridgePingDelay)
			defer cancel()
			if err := bridge.Ping(ctx); err != nil {
				slog.Warn("IPC bridge not reachable", "url", bridge.BaseURL(), "error", err)
			}
		}()
	}

	registry := toolregistry.New()
	toolpresets.New(svc).Register(registry)

	u := ui.New(ui.Params{
		App:              fyneApp,
		CharacterService: cs,
		IsDebug:          *debugFlag,
		IsOffline:        *offlineFlag,
		Registry:         registry,
		Settings:         s,
	})
	u.ShowAndRun()
}
