// Command solve runs one auction through the Curve LP solve pipeline and
// prints the resulting solutions as JSON.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/relaydex/curve-lp-solver/internal/auction"
	"github.com/relaydex/curve-lp-solver/internal/auditlog"
	"github.com/relaydex/curve-lp-solver/internal/config"
	"github.com/relaydex/curve-lp-solver/internal/curveroute"
	"github.com/relaydex/curve-lp-solver/internal/domain"
	"github.com/relaydex/curve-lp-solver/internal/eth"
	"github.com/relaydex/curve-lp-solver/internal/priceapi"
	"github.com/relaydex/curve-lp-solver/internal/solver"
)

func main() {
	_ = godotenv.Load("../../.env")

	configPath := flag.String("config", "", "path to the solver's JSON config file")
	auctionPath := flag.String("auction", "", "path to the auction JSON request (defaults to stdin)")
	auditDBPath := flag.String("audit-db", "", "path to the sqlite audit log (disabled if empty)")
	flag.Parse()

	if *configPath == "" {
		log.Fatal("usage: solve -config <path> [-auction <path>] [-audit-db <path>]")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("solve: load config: %v", err)
	}

	auctionRaw, err := readAuctionInput(*auctionPath)
	if err != nil {
		log.Fatalf("solve: read auction input: %v", err)
	}

	envelope, err := auction.DecodeEnvelope(auctionRaw)
	if err != nil {
		log.Fatalf("solve: %v", err)
	}
	auc, err := envelope.ToDomain()
	if err != nil {
		log.Fatalf("solve: %v", err)
	}

	ethClient, err := eth.NewClient(cfg.NodeURL)
	if err != nil {
		log.Fatalf("solve: connect to node: %v", err)
	}

	fmt.Printf("solving auction %s: %d orders, deadline %s\n", envelope.ID, len(auc.Orders), auc.Deadline.Format(time.RFC3339))

	driver := &auction.Driver{
		Config: solver.Config{
			ChainID:              cfg.ChainID,
			LPTokens:             cfg.LPTokens,
			AllowedBuyTokens:     cfg.AllowedBuyTokens,
			SlippageBps:          cfg.SlippageBps,
			MaxQuoteDeviationBps: cfg.MaxQuoteDeviationBps,
			SolutionGasOffset:    cfg.SolutionGasOffset,
			SettlementContract:   cfg.SettlementContract,
		},
		Deps: solver.Deps{
			Route: curveroute.NewClient(cfg.CurveAPIURL),
			Eth:   ethClient,
			Price: priceapi.NewClient(cfg.CurvePriceAPIURL),
		},
	}

	solutions := driver.Solve(context.Background(), auc)
	fmt.Printf("produced %d solution(s)\n", len(solutions))

	if *auditDBPath != "" {
		logSolutions(*auditDBPath, envelope.ID, solutions)
	}

	out, err := auction.EncodeSolutions(solutions)
	if err != nil {
		log.Fatalf("solve: encode solutions: %v", err)
	}
	os.Stdout.Write(out)
	fmt.Println()
}

func readAuctionInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

// logSolutions persists every emitted solution to the sqlite audit log,
// opened for the lifetime of a single command invocation.
func logSolutions(dbPath, auctionID string, solutions []*domain.Solution) {
	logDB, err := auditlog.Open(dbPath)
	if err != nil {
		log.Printf("solve: open audit log: %v", err)
		return
	}
	defer logDB.Close()

	if err := logDB.RecordBatch(auctionID, time.Now().Unix(), solutions); err != nil {
		log.Printf("solve: record audit log: %v", err)
	}
}
