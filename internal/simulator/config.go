// Package simulator provides configuration and data structures for the agent
// task simulator used to exercise the monitor.
package simulator

import (
	"flag"
	"log"
	"os"
	"strconv"
)

type SimulatorConfig struct {
	Address      string
	Key          string
	TickInterval int
	AgentCount   int
	RateLimit    int
}

func NewSimulatorConfig() (*SimulatorConfig, error) {
	config := &SimulatorConfig{
		Address:      "localhost:8080",
		Key:          "",
		TickInterval: 2,
		AgentCount:   3,
		RateLimit:    5,
	}

	address := flag.String("a", config.Address, "Address of the monitor server")
	key := flag.String("k", config.Key, "Key for hash")
	tickInterval := flag.Int("p", config.TickInterval, "Seconds between simulated task batches")
	agentCount := flag.Int("c", config.AgentCount, "Number of simulated agents")
	rateLimit := flag.Int("l", config.RateLimit, "Rate limit")
	flag.Parse()

	envIntVars := map[string]*int{
		"TICK_INTERVAL": tickInterval,
		"AGENT_COUNT":   agentCount,
		"RATE_LIMIT":    rateLimit,
	}

	envStrVars := map[string]*string{
		"ADDRESS": address,
		"KEY":     key,
	}

	for envVar, flag := range envIntVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			interval, err := strconv.Atoi(envValue)
			if err != nil {
				log.Fatalf("Invalid %s value: %s", envVar, envValue)
			}
			*flag = interval
		}
	}

	for envVar, flag := range envStrVars {
		if envValue := os.Getenv(envVar); envValue != "" {
			*flag = envValue
		}
	}
	config.Address = *address
	config.Key = *key
	config.TickInterval = *tickInterval
	config.AgentCount = *agentCount
	config.RateLimit = *rateLimit

	return config, nil
}
