package main

import (
	"math/big"

	"github.com/wfunc/battleserver/config"
	"github.com/wfunc/battleserver/logger"
	"github.com/wfunc/battleserver/monitor"
	"github.com/wfunc/battleserver/server"
	"github.com/wfunc/battleserver/signer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize reward signer
	rewardSigner, err := signer.New(cfg.Signer.PrivateKey)
	if err != nil {
		logger.Log.Fatalf("Failed to initialize signer: %v", err)
	}
	logger.Log.Infof("Reward signer address: %s", rewardSigner.Address().Hex())

	rewardAmount, ok := new(big.Int).SetString(cfg.Reward.Amount, 10)
	if !ok {
		logger.Log.Fatalf("Invalid reward amount: %q", cfg.Reward.Amount)
	}

	// Initialize monitoring
	mon := monitor.NewMonitor("battleserver")
	mon.StartServer(cfg.Server.MetricsAddress)

	// Initialize Game Server
	gameServer := server.NewGameServer(cfg.Server.HTTPAddress, cfg.Server.RPCAddress, rewardSigner, rewardAmount, mon)

	// Start Server
	logger.Log.Infof("Starting battle server on %s", cfg.Server.HTTPAddress)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
