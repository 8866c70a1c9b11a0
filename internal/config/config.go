package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	models "github.com/Schera-ole/agentmon/internal/model"
)

type MonitorConfig struct {
	Address         string
	EvalInterval    int // seconds between alert evaluation ticks
	ProbeInterval   int // seconds between system probe samples
	PruneInterval   int // seconds between retention sweeps
	Retention       int // minutes of samples kept after pruning
	RecentAlerts    int // events returned in the system health view
	StatsWindow     int // seconds of history aggregated for dashboards
	DatabaseDSN     string
	AlertsFile      string
	Key             string
	SlackWebhookURL string
	NotifyURL       string
}

func NewMonitorConfig() (*MonitorConfig, error) {
	config := &MonitorConfig{
		Address:       "localhost:8080",
		EvalInterval:  30,
		ProbeInterval: 15,
		PruneInterval: 300,
		Retention:     60,
		RecentAlerts:  20,
		StatsWindow:   300,
	}

	address := flag.String("a", config.Address, "address to serve dashboards on")
	evalInterval := flag.Int("e", config.EvalInterval, "alert evaluation interval in seconds")
	probeInterval := flag.Int("p", config.ProbeInterval, "system probe interval in seconds")
	pruneInterval := flag.Int("g", config.PruneInterval, "retention sweep interval in seconds")
	retention := flag.Int("r", config.Retention, "sample retention in minutes")
	recentAlerts := flag.Int("n", config.RecentAlerts, "number of recent alerts in the health view")
	statsWindow := flag.Int("w", config.StatsWindow, "dashboard statistics window in seconds")
	databaseDSN := flag.String("d", config.DatabaseDSN, "database dsn for the alert journal")
	alertsFile := flag.String("f", config.AlertsFile, "path to the alert rules file")
	key := flag.String("k", config.Key, "key for hash")
	slackURL := flag.String("s", config.SlackWebhookURL, "slack webhook url")
	notifyURL := flag.String("u", config.NotifyURL, "generic webhook url")
	flag.Parse()

	envStrVars := map[string]*string{
		"ADDRESS":           address,
		"DATABASE_DSN":      databaseDSN,
		"ALERTS_FILE":       alertsFile,
		"KEY":               key,
		"SLACK_WEBHOOK_URL": slackURL,
		"NOTIFY_URL":        notifyURL,
	}

	envIntVars := map[string]*int{
		"EVAL_INTERVAL":  evalInterval,
		"PROBE_INTERVAL": probeInterval,
		"PRUNE_INTERVAL": pruneInterval,
		"RETENTION":      retention,
		"RECENT_ALERTS":  recentAlerts,
		"STATS_WINDOW":   statsWindow,
	}

	for envVar, flag := range envStrVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			*flag = envValue
		}
	}

	for envVar, flag := range envIntVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			interval, err := strconv.Atoi(envValue)
			if err != nil {
				return nil, fmt.Errorf("invalid %s value %q: %w", envVar, envValue, err)
			}
			*flag = interval
		}
	}

	config.Address = *address
	config.EvalInterval = *evalInterval
	config.ProbeInterval = *probeInterval
	config.PruneInterval = *pruneInterval
	config.Retention = *retention
	config.RecentAlerts = *recentAlerts
	config.StatsWindow = *statsWindow
	config.DatabaseDSN = *databaseDSN
	config.AlertsFile = *alertsFile
	config.Key = *key
	config.SlackWebhookURL = *slackURL
	config.NotifyURL = *notifyURL

	return config, nil
}

// LoadAlertSpecs reads the alert definitions file used at startup.
//
// Each entry maps one-to-one to an AddRule call; a missing file is not an error
// so the engine can run without any configured rules.
func LoadAlertSpecs(fname string) ([]models.AlertSpec, error) {
	if fname == "" {
		return nil, nil
	}
	if _, err := os.Stat(fname); os.IsNotExist(err) {
		return nil, nil
	}

	file, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("error opening alerts file: %w", err)
	}
	defer file.Close()

	var specs []models.AlertSpec
	if err := json.NewDecoder(file).Decode(&specs); err != nil {
		return nil, fmt.Errorf("error parsing alerts file %s: %w", fname, err)
	}
	return specs, nil
}
