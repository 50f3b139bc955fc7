package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/fadedpez/tucocasino/pkg/services/blackjack"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type SimulateCmd struct {
	Hands   int    `kong:"default='100',help='Blackjack hands per player'"`
	Spins   int    `kong:"default='1000',help='Slot spins per player'"`
	Players int    `kong:"default='4',help='Players playing concurrently'"`
	Seed    int64  `kong:"help='Seed for deterministic runs (0 for random)'"`
	Bet     string `kong:"default='1',help='Stake for every hand and spin'"`
	Balance string `kong:"default='10000',help='Starting balance of each simulated player'"`

	LogLevel string `kong:"help='Log level (debug|info|warn|error)'"`
}

func (c *SimulateCmd) Run() error {
	if c.Players < 1 || c.Hands < 0 || c.Spins < 0 {
		return fmt.Errorf("players must be positive and hands/spins not negative")
	}
	bet, err := decimal.NewFromString(c.Bet)
	if err != nil || !bet.IsPositive() {
		return fmt.Errorf("invalid bet %q", c.Bet)
	}
	balance, err := decimal.NewFromString(c.Balance)
	if err != nil || !balance.IsPositive() {
		return fmt.Errorf("invalid balance %q", c.Balance)
	}

	ctx := context.Background()
	a, err := newApp(ctx, appOptions{
		logLevel:        c.LogLevel,
		seed:            c.Seed,
		startingBalance: balance,
		statsWindow:     c.Players * (c.Hands + c.Spins),
	})
	if err != nil {
		return err
	}
	defer a.Close()

	a.scheduler.Start(ctx)

	start := time.Now()
	players := make([]string, c.Players)
	g, gctx := errgroup.WithContext(ctx)
	for i := range players {
		players[i] = fmt.Sprintf("sim-%02d", i+1)
		playerID := players[i]
		g.Go(func() error {
			if err := playBlackjack(gctx, a, playerID, bet, c.Hands); err != nil {
				return fmt.Errorf("%s blackjack: %w", playerID, err)
			}
			if err := playSlot(gctx, a, playerID, bet, c.Spins); err != nil {
				return fmt.Errorf("%s slot: %w", playerID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Elapsed("simulation", start)

	return report(ctx, os.Stdout, a, players)
}

// playBlackjack plays hands with the dealer's own rule: hit below 17, then stand
func playBlackjack(ctx context.Context, a *app, playerID string, bet decimal.Decimal, hands int) error {
	for i := 0; i < hands; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		view, err := a.blackjack.StartGame(ctx, playerID, bet)
		if types.IsGameError(err, types.ErrInsufficientFunds) {
			a.logger.Info("%s is out of funds after %d hands", playerID, i)
			return nil
		}
		if err != nil {
			return err
		}

		for view.Status == blackjack.StatusActive && view.PlayerScore < blackjack.DealerStandsOn {
			if view, err = a.blackjack.Hit(ctx, view.GameID); err != nil {
				return err
			}
		}
		if view.Status == blackjack.StatusActive {
			if _, err = a.blackjack.Stand(ctx, view.GameID); err != nil {
				return err
			}
		}
	}
	return nil
}

func playSlot(ctx context.Context, a *app, playerID string, bet decimal.Decimal, spins int) error {
	for i := 0; i < spins; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := a.machine.Spin(ctx, playerID, bet)
		if types.IsGameError(err, types.ErrInsufficientFunds) {
			a.logger.Info("%s is out of funds after %d spins", playerID, i)
			return nil
		}
		if err != nil {
			return err
		}
		if result.Jackpot.Won {
			a.logger.Info("%s won the %s jackpot: %s", playerID, a.machine.JackpotStatus().ID, result.Jackpot.Amount)
		}
	}
	return nil
}

func report(ctx context.Context, out io.Writer, a *app, players []string) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "player\tgame\trounds\twins\tlosses\tpushes\tjackpots\twagered\tpaid\tnet\tRTP %\tbalance\t")

	for _, playerID := range players {
		balance, err := a.wallets.GetBalance(ctx, playerID)
		if err != nil {
			return err
		}
		for _, game := range []entities.GameType{entities.GameTypeBlackjack, entities.GameTypeSlot} {
			stats, err := a.stats.PlayerStatistics(ctx, playerID, game)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%.2f\t%s\t\n",
				playerID, game, stats.RoundsPlayed, stats.Wins, stats.Losses, stats.Pushes, stats.Jackpots,
				stats.TotalBet.StringFixed(2), stats.TotalPayout.StringFixed(2), stats.NetProfit().StringFixed(2),
				stats.RTP(), balance.StringFixed(2))
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(out)
	return writeHouseRTP(ctx, out, a, 0)
}

// writeHouseRTP prints the observed RTP per game over the last limit rounds
func writeHouseRTP(ctx context.Context, out io.Writer, a *app, limit int) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "game\trounds\twagered\tpaid\tjackpots paid\tRTP %\thouse edge %\t")
	for _, game := range []entities.GameType{entities.GameTypeBlackjack, entities.GameTypeSlot} {
		rtp, err := a.stats.HouseRTP(ctx, game, limit)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%.2f\t%.2f\t\n",
			game, rtp.Rounds, rtp.TotalBet.StringFixed(2), rtp.TotalPayout.StringFixed(2),
			rtp.JackpotPaid.StringFixed(2), rtp.RTP(), rtp.HouseEdge())
	}
	return w.Flush()
}
