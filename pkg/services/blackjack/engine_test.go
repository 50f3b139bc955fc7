package blackjack

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/internal/logging"
	"github.com/fadedpez/tucocasino/internal/types"
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/fadedpez/tucocasino/pkg/repositories/history"
	walletRepo "github.com/fadedpez/tucocasino/pkg/repositories/wallet"
	"github.com/fadedpez/tucocasino/pkg/rng"
	"github.com/fadedpez/tucocasino/pkg/services/wallet"
	mock_wallet_service "github.com/fadedpez/tucocasino/pkg/services/wallet/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type decimalMatcher struct {
	want decimal.Decimal
}

func (m decimalMatcher) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalMatcher) String() string {
	return "is decimal " + m.want.String()
}

func amount(v string) gomock.Matcher {
	return decimalMatcher{want: decimal.RequireFromString(v)}
}

// stacked deals the given cards first, in player, player, dealer, dealer order
func stacked(cards ...string) Option {
	return WithDeckFactory(func(rng.Source) *entities.Deck {
		return entities.NewStackedDeck(hand(cards...)...)
	})
}

type EngineTestSuite struct {
	suite.Suite
	ctx     context.Context
	ctrl    *gomock.Controller
	ledger  *mock_wallet_service.MockLedger
	history *history.MemoryRepository
	clock   *quartz.Mock
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

func (s *EngineTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mock_wallet_service.NewMockLedger(s.ctrl)
	s.history = history.NewMemoryRepository()
	s.clock = quartz.NewMock(s.T())
}

func (s *EngineTestSuite) engine(opts ...Option) *Engine {
	base := []Option{WithHistory(s.history), WithClock(s.clock), WithLogger(logging.Default)}
	return NewEngine(s.ledger, append(base, opts...)...)
}

func (s *EngineTestSuite) expectDebit(bet string) {
	s.ledger.EXPECT().Debit(gomock.Any(), "player1", amount(bet), gomock.Any()).Return(nil)
}

func (s *EngineTestSuite) expectCredit(winnings string) {
	s.ledger.EXPECT().Credit(gomock.Any(), "player1", amount(winnings), gomock.Any()).Return(nil)
}

func (s *EngineTestSuite) TestPlayerBlackjackPaysThreeToTwo() {
	// Setup
	engine := s.engine(stacked("AH", "KS", "9D", "8C"))
	s.expectDebit("10")
	s.expectCredit("25")

	// Execute
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))

	// Assert
	s.Require().NoError(err)
	s.Equal(StatusPlayerWonBlackjack, view.Status)
	s.Equal("25", view.Winnings.String())
	s.True(view.Settled)
	s.Require().NotNil(view.DealerScore)
	s.Equal(17, *view.DealerScore)

	rounds, err := s.history.GetPlayerRounds(s.ctx, "player1", 10)
	s.Require().NoError(err)
	s.Require().Len(rounds, 1)
	s.Equal(entities.GameTypeBlackjack, rounds[0].GameType)
	s.Equal(view.GameID, rounds[0].GameID)
	s.Equal("25", rounds[0].Payout.String())
}

func (s *EngineTestSuite) TestBothNaturalsPush() {
	engine := s.engine(stacked("AH", "KS", "AD", "QC"))
	s.expectDebit("10")
	s.expectCredit("10")

	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))

	s.Require().NoError(err)
	s.Equal(StatusPush, view.Status)
	s.Equal("10", view.Winnings.String())
}

func (s *EngineTestSuite) TestDealerNaturalDoesNotEndHand() {
	engine := s.engine(stacked("10H", "7S", "AD", "KC"))
	s.expectDebit("10")

	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))

	s.Require().NoError(err)
	s.Equal(StatusActive, view.Status)
	s.True(view.DealerHand[1].FaceDown, "hole card must stay hidden")
	s.Nil(view.DealerScore)
}

func (s *EngineTestSuite) TestActiveHandHidesDealer() {
	engine := s.engine(stacked("10H", "6S", "9D", "7C"))
	s.expectDebit("5")

	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(5))

	s.Require().NoError(err)
	s.Equal(StatusActive, view.Status)
	s.Equal(16, view.PlayerScore)
	s.Equal(CardView{Suit: entities.Diamonds, Rank: entities.Nine}, view.DealerHand[0])
	s.Equal(CardView{FaceDown: true}, view.DealerHand[1])
	s.Nil(view.DealerScore)
	s.True(view.Winnings.IsZero())
	s.False(view.Settled)

	again, err := engine.View(view.GameID)
	s.Require().NoError(err)
	s.Equal(view, again)
}

func (s *EngineTestSuite) TestBustOnHitEndsGame() {
	// Setup
	engine := s.engine(stacked("KH", "QS", "9D", "7C", "5H"))
	s.expectDebit("10")
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	// Execute
	view, err = engine.Hit(s.ctx, view.GameID)

	// Assert
	s.Require().NoError(err)
	s.Equal(StatusDealerWon, view.Status)
	s.Equal(25, view.PlayerScore)
	s.True(view.Winnings.IsZero())
	s.True(view.Settled)

	_, err = engine.Hit(s.ctx, view.GameID)
	s.True(types.IsGameError(err, types.ErrGameNotActive), "hit after bust should be GameNotActive, got %v", err)
	_, err = engine.Stand(s.ctx, view.GameID)
	s.True(types.IsGameError(err, types.ErrGameNotActive), "stand after bust should be GameNotActive, got %v", err)
}

func (s *EngineTestSuite) TestHitWithoutBustStaysActive() {
	engine := s.engine(stacked("2H", "3S", "9D", "7C", "4H"))
	s.expectDebit("10")
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	view, err = engine.Hit(s.ctx, view.GameID)

	s.Require().NoError(err)
	s.Equal(StatusActive, view.Status)
	s.Equal(9, view.PlayerScore)
	s.Len(view.PlayerHand, 3)
}

func (s *EngineTestSuite) TestStandOutcomes() {
	testCases := []struct {
		name     string
		cards    []string
		status   Status
		winnings string
		dealer   int
	}{
		{name: "dealer busts", cards: []string{"10H", "9S", "10D", "6C", "KH"}, status: StatusPlayerWon, winnings: "20", dealer: 26},
		{name: "dealer higher", cards: []string{"10H", "7S", "10D", "9C"}, status: StatusDealerWon, winnings: "0", dealer: 19},
		{name: "player higher", cards: []string{"10H", "QS", "10D", "8C"}, status: StatusPlayerWon, winnings: "20", dealer: 18},
		{name: "equal totals push", cards: []string{"KH", "8S", "10D", "8C"}, status: StatusPush, winnings: "10", dealer: 18},
		{name: "dealer draws to seventeen", cards: []string{"10H", "6S", "2D", "3C", "4H", "2S", "6D"}, status: StatusDealerWon, winnings: "0", dealer: 17},
		{name: "dealer stands on soft seventeen", cards: []string{"10H", "8S", "AD", "6C"}, status: StatusPlayerWon, winnings: "20", dealer: 17},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.SetupTest()
			engine := s.engine(stacked(tc.cards...))
			s.expectDebit("10")
			if tc.winnings != "0" {
				s.expectCredit(tc.winnings)
			}

			view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
			s.Require().NoError(err)
			s.Require().Equal(StatusActive, view.Status)

			view, err = engine.Stand(s.ctx, view.GameID)

			s.Require().NoError(err)
			s.Equal(tc.status, view.Status)
			s.Equal(tc.winnings, view.Winnings.String())
			s.Require().NotNil(view.DealerScore)
			s.Equal(tc.dealer, *view.DealerScore)
		})
	}
}

func (s *EngineTestSuite) TestDealerNeverStopsBelowSeventeen() {
	ledger := wallet.NewService(walletRepo.NewMemoryRepository(), wallet.WithStartingBalance(decimal.NewFromInt(1_000_000)))

	for seed := int64(0); seed < 300; seed++ {
		engine := NewEngine(ledger, WithSource(rng.NewSeeded(seed)))

		view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(1))
		s.Require().NoError(err)
		if view.Status.IsTerminal() {
			continue
		}

		view, err = engine.Stand(s.ctx, view.GameID)
		s.Require().NoError(err)
		s.Require().NotNil(view.DealerScore)
		s.GreaterOrEqual(*view.DealerScore, DealerStandsOn, "seed %d", seed)
		s.True(view.Status.IsTerminal())
	}
}

func (s *EngineTestSuite) TestUnknownGame() {
	engine := s.engine()

	_, err := engine.Hit(s.ctx, "missing")
	s.True(types.IsGameError(err, types.ErrGameNotFound))
	_, err = engine.Stand(s.ctx, "missing")
	s.True(types.IsGameError(err, types.ErrGameNotFound))
	_, err = engine.View("missing")
	s.True(types.IsGameError(err, types.ErrGameNotFound))
	_, err = engine.Settle(s.ctx, "missing")
	s.True(types.IsGameError(err, types.ErrGameNotFound))
}

func (s *EngineTestSuite) TestRejectsInvalidInput() {
	engine := s.engine()

	for _, bet := range []decimal.Decimal{decimal.Zero, decimal.NewFromInt(-5)} {
		_, err := engine.StartGame(s.ctx, "player1", bet)
		s.True(types.IsGameError(err, types.ErrInvalidBet), "bet %s", bet)
	}

	_, err := engine.StartGame(s.ctx, "", decimal.NewFromInt(5))
	s.True(types.IsGameError(err, types.ErrInvalidArgument))
	s.Zero(engine.ActiveSessions())
}

func (s *EngineTestSuite) TestLedgerUnavailableRejectsGame() {
	engine := s.engine(stacked("AH", "KS", "9D", "8C"))
	s.ledger.EXPECT().Debit(gomock.Any(), "player1", amount("10"), gomock.Any()).Return(errors.New("connection refused"))

	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))

	s.Nil(view)
	s.True(types.IsGameError(err, types.ErrLedgerUnavailable))
	s.Zero(engine.ActiveSessions(), "no hand should be dealt without a debit")
}

func (s *EngineTestSuite) TestInsufficientFundsKeepsLedgerCode() {
	engine := s.engine()
	s.ledger.EXPECT().Debit(gomock.Any(), "player1", gomock.Any(), gomock.Any()).
		Return(types.NewGameError(types.ErrInsufficientFunds, "cannot cover 10"))

	_, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))

	s.True(types.IsGameError(err, types.ErrInsufficientFunds))
}

func (s *EngineTestSuite) TestFailedCreditCanBeSettledLater() {
	// Setup
	engine := s.engine(stacked("AH", "KS", "9D", "8C"))
	s.expectDebit("10")
	gomock.InOrder(
		s.ledger.EXPECT().Credit(gomock.Any(), "player1", amount("25"), gomock.Any()).Return(errors.New("timeout")),
		s.ledger.EXPECT().Credit(gomock.Any(), "player1", amount("25"), gomock.Any()).Return(nil),
	)

	// Execute
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))

	// Assert
	s.True(types.IsGameError(err, types.ErrLedgerUnavailable))
	s.Require().NotNil(view, "the caller needs the game ID to settle later")
	s.Equal(StatusPlayerWonBlackjack, view.Status)
	s.False(view.Settled)
	s.Contains(err.Error(), view.GameID)
	s.Equal(1, engine.ActiveSessions())

	rounds, err := s.history.GetRecentRounds(s.ctx, entities.GameTypeBlackjack, 10)
	s.Require().NoError(err)
	s.Empty(rounds, "unsettled hands are not recorded")

	gameID := view.GameID
	pending, err := engine.View(gameID)
	s.Require().NoError(err)
	s.Equal(StatusPlayerWonBlackjack, pending.Status)
	s.False(pending.Settled)

	settled, err := engine.Settle(s.ctx, gameID)
	s.Require().NoError(err)
	s.True(settled.Settled)

	again, err := engine.Settle(s.ctx, gameID)
	s.Require().NoError(err, "settling twice must not credit twice")
	s.True(again.Settled)
}

func (s *EngineTestSuite) TestFailedCreditOnStandReturnsView() {
	engine := s.engine(stacked("10H", "9S", "10D", "7C"))
	s.expectDebit("10")
	gomock.InOrder(
		s.ledger.EXPECT().Credit(gomock.Any(), "player1", amount("20"), gomock.Any()).Return(errors.New("timeout")),
		s.ledger.EXPECT().Credit(gomock.Any(), "player1", amount("20"), gomock.Any()).Return(nil),
	)

	started, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	view, err := engine.Stand(s.ctx, started.GameID)
	s.True(types.IsGameError(err, types.ErrLedgerUnavailable))
	s.Require().NotNil(view)
	s.Equal(StatusPlayerWon, view.Status)
	s.False(view.Settled)

	settled, err := engine.Settle(s.ctx, view.GameID)
	s.Require().NoError(err)
	s.True(settled.Settled)
}

func (s *EngineTestSuite) TestSettleActiveGame() {
	engine := s.engine(stacked("10H", "6S", "9D", "7C"))
	s.expectDebit("10")
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	_, err = engine.Settle(s.ctx, view.GameID)

	s.True(types.IsGameError(err, types.ErrGameNotActive))
}

func (s *EngineTestSuite) TestDeckExhaustedTerminatesSession() {
	// Setup
	engine := s.engine(WithDeckFactory(func(rng.Source) *entities.Deck {
		deck := entities.NewStackedDeck(hand("2H", "3S", "9D", "7C")...)
		deck.Trim(4)
		return deck
	}))
	s.expectDebit("10")
	s.ledger.EXPECT().Credit(gomock.Any(), "player1", amount("10"), gomock.Any()).Return(nil)
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	// Execute
	_, err = engine.Hit(s.ctx, view.GameID)

	// Assert
	s.True(types.IsGameError(err, types.ErrDeckExhausted))
	s.ErrorIs(err, entities.ErrDeckExhausted)
	_, err = engine.View(view.GameID)
	s.True(types.IsGameError(err, types.ErrGameNotFound), "exhausted session should be removed")
}

func (s *EngineTestSuite) TestReap() {
	// Setup
	engine := s.engine(stacked("AH", "KS", "9D", "8C"))
	s.expectDebit("10")
	s.expectCredit("25")
	finished, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	engine.newDeck = func(rng.Source) *entities.Deck { return entities.NewStackedDeck(hand("10H", "6S", "9D", "7C")...) }
	s.expectDebit("10")
	abandoned, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	// Execute
	s.clock.Advance(5 * time.Minute).MustWait(s.ctx)
	s.Equal(0, engine.Reap(10*time.Minute, time.Hour))

	s.clock.Advance(10 * time.Minute).MustWait(s.ctx)
	s.Equal(1, engine.Reap(10*time.Minute, time.Hour))
	_, err = engine.View(finished.GameID)
	s.True(types.IsGameError(err, types.ErrGameNotFound))

	s.clock.Advance(time.Hour).MustWait(s.ctx)
	s.Equal(1, engine.Reap(10*time.Minute, time.Hour))
	_, err = engine.View(abandoned.GameID)
	s.True(types.IsGameError(err, types.ErrGameNotFound))
}

func (s *EngineTestSuite) TestConcurrentHitsAreSerialized() {
	// Setup
	ledger := wallet.NewService(walletRepo.NewMemoryRepository())
	engine := NewEngine(ledger, stacked("2H", "2S", "9D", "8C", "2D", "2C", "3H", "3S", "3D", "3C", "4H"))
	view, err := engine.StartGame(s.ctx, "player1", decimal.NewFromInt(10))
	s.Require().NoError(err)

	// Execute
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.Hit(s.ctx, view.GameID)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			s.True(types.IsGameError(err, types.ErrGameNotActive), "unexpected error %v", err)
		}()
	}
	wg.Wait()

	// Assert
	final, err := engine.View(view.GameID)
	s.Require().NoError(err)
	s.Equal(2+succeeded, len(final.PlayerHand), "every successful hit adds exactly one card")
	s.Equal(StatusDealerWon, final.Status)

	seen := map[CardView]bool{}
	for _, c := range append(final.PlayerHand, final.DealerHand...) {
		s.False(seen[c], "card %v dealt twice", c)
		seen[c] = true
	}
}
