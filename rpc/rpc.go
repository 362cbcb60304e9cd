package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/battleserver/logger"
)

// Server manages the RPC listener used for out-of-band admin queries.
type Server struct {
	listener net.Listener
	address  string
}

// NewServer creates a new RPC server.
func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Check if the error is due to the listener being closed.
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsProvider is what the battle service needs from the game server.
type StatsProvider interface {
	OnlinePlayers() int
	QueueDepth() int
	ActiveBattles() int
	UptimeSeconds() float64
	SignerAddress() string
}

// BattleService exposes server statistics over net/rpc.
type BattleService struct {
	provider StatsProvider
}

// NewBattleService creates a new BattleService.
func NewBattleService(provider StatsProvider) *BattleService {
	return &BattleService{provider: provider}
}

type StatsArgs struct{}

type StatsReply struct {
	OnlinePlayers int
	QueueDepth    int
	ActiveBattles int
	UptimeSeconds float64
	SignerAddress string
}

// GetStats follows the net/rpc signature: exported method, exported
// arguments, second argument is a pointer, return type is error.
func (bs *BattleService) GetStats(args *StatsArgs, reply *StatsReply) error {
	reply.OnlinePlayers = bs.provider.OnlinePlayers()
	reply.QueueDepth = bs.provider.QueueDepth()
	reply.ActiveBattles = bs.provider.ActiveBattles()
	reply.UptimeSeconds = bs.provider.UptimeSeconds()
	reply.SignerAddress = bs.provider.SignerAddress()
	return nil
}
