package main

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/go-petr/pet-ledger/internal/ledgerdelivery"
	"github.com/go-petr/pet-ledger/internal/ledgermem"
	"github.com/go-petr/pet-ledger/internal/ledgerpgs"
	"github.com/go-petr/pet-ledger/internal/ledgerservice"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
)

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.GetLogger(config)

	store, err := newStore(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create store")
	}

	gin.SetMode(gin.ReleaseMode)
	server := createServer(store, logger)

	if err := server.Run(config.ServerAddress); err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func newStore(config configpkg.Config, logger zerolog.Logger) (ledgerservice.Store, error) {
	if config.StoreBackend != "postgres" {
		logger.Info().Msg("using in-memory store")
		return ledgermem.New(), nil
	}

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		return nil, err
	}

	if err := ledgerpgs.Apply(context.Background(), conn); err != nil {
		return nil, err
	}

	return ledgerpgs.New(conn), nil
}

func createServer(store ledgerservice.Store, logger zerolog.Logger) *gin.Engine {
	service := ledgerservice.New(store)
	handler := ledgerdelivery.NewHandler(service)

	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	routes := []struct {
		method  string
		path    string
		handler gin.HandlerFunc
	}{
		{http.MethodPost, "/createUser", handler.CreateUser},
		{http.MethodGet, "/balance", handler.GetBalance},
		{http.MethodPost, "/deposit", handler.Deposit},
		{http.MethodPost, "/withdraw", handler.Withdraw},
		{http.MethodPost, "/transfer", handler.Transfer},
		{http.MethodGet, "/transactions", handler.GetTransactions},
	}

	for _, r := range routes {
		server.Handle(r.method, r.path, r.handler)
	}

	return server
}
