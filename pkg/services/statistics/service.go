package statistics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/coder/quartz"
	"github.com/fadedpez/tucocasino/pkg/entities"
	"github.com/fadedpez/tucocasino/pkg/repositories/history"
	"github.com/shopspring/decimal"
)

// DefaultWindow is how many recent rounds the aggregates look at
const DefaultWindow = 10000

// Service aggregates round history into player statistics and payout rates
type Service struct {
	repository history.Repository
	window     int
	clock      quartz.Clock
}

// Option configures a Service
type Option func(*Service)

// WithWindow limits aggregates to the most recent n rounds
func WithWindow(n int) Option {
	return func(s *Service) { s.window = n }
}

// WithClock sets the clock used to stamp leaderboards
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// NewService creates a new statistics service
func NewService(repository history.Repository, opts ...Option) *Service {
	s := &Service{
		repository: repository,
		window:     DefaultWindow,
		clock:      quartz.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RTPReport is the observed return to player over a set of rounds
type RTPReport struct {
	GameType    entities.GameType `json:"game_type,omitempty"`
	Rounds      int               `json:"rounds"`
	TotalBet    decimal.Decimal   `json:"total_bet"`
	TotalPayout decimal.Decimal   `json:"total_payout"`
	JackpotPaid decimal.Decimal   `json:"jackpot_paid"`
}

// RTP returns payout over wagered as a percentage
func (r *RTPReport) RTP() float64 {
	if r.TotalBet.IsZero() {
		return 0.0
	}
	rtp, _ := r.TotalPayout.Div(r.TotalBet).Mul(decimal.NewFromInt(100)).Float64()
	return rtp
}

// HouseEdge returns the share of wagers the house kept, as a percentage
func (r *RTPReport) HouseEdge() float64 {
	if r.TotalBet.IsZero() {
		return 0.0
	}
	return 100.0 - r.RTP()
}

// PlayerRank represents a player's statistics with ranking information
type PlayerRank struct {
	*entities.PlayerStatistics
	Rank        int     `json:"rank"`
	WinRate     float64 `json:"win_rate"`
	RTP         float64 `json:"rtp"`
	IsTopWinner bool    `json:"is_top_winner"`
	IsTopPlayer bool    `json:"is_top_player"`
}

// Leaderboard represents a paginated leaderboard of player statistics
type Leaderboard struct {
	GameType       entities.GameType `json:"game_type,omitempty"`
	Players        []*PlayerRank     `json:"players"`
	TotalPlayers   int               `json:"total_players"`
	CurrentPage    int               `json:"current_page"`
	TotalPages     int               `json:"total_pages"`
	PlayersPerPage int               `json:"players_per_page"`
	LastUpdated    time.Time         `json:"last_updated"`
}

// PlayerStatistics aggregates a player's recent rounds. An empty gameType
// covers every game.
func (s *Service) PlayerStatistics(ctx context.Context, playerID string, gameType entities.GameType) (*entities.PlayerStatistics, error) {
	rounds, err := s.repository.GetPlayerRounds(ctx, playerID, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to load rounds for player %s: %w", playerID, err)
	}

	stats := newPlayerStatistics(playerID, gameType)
	for _, round := range rounds {
		if gameType != "" && round.GameType != gameType {
			continue
		}
		accumulate(stats, round)
	}
	return stats, nil
}

// HouseRTP reports the observed payout rate of the most recent limit rounds
func (s *Service) HouseRTP(ctx context.Context, gameType entities.GameType, limit int) (*RTPReport, error) {
	if limit < 1 {
		limit = s.window
	}

	rounds, err := s.repository.GetRecentRounds(ctx, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent rounds: %w", err)
	}

	report := &RTPReport{
		GameType:    gameType,
		TotalBet:    decimal.Zero,
		TotalPayout: decimal.Zero,
		JackpotPaid: decimal.Zero,
	}
	for _, round := range rounds {
		report.Rounds++
		report.TotalBet = report.TotalBet.Add(round.Bet)
		report.TotalPayout = report.TotalPayout.Add(round.Payout)
		report.JackpotPaid = report.JackpotPaid.Add(round.JackpotWin)
	}
	return report, nil
}

// GetLeaderboard ranks the players of recent rounds by net profit
func (s *Service) GetLeaderboard(ctx context.Context, gameType entities.GameType, page, playersPerPage int) (*Leaderboard, error) {
	// Default values
	if page < 1 {
		page = 1
	}
	if playersPerPage < 1 {
		playersPerPage = 10
	}

	rounds, err := s.repository.GetRecentRounds(ctx, gameType, s.window)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent rounds: %w", err)
	}

	byPlayer := make(map[string]*entities.PlayerStatistics)
	for _, round := range rounds {
		stats, ok := byPlayer[round.PlayerID]
		if !ok {
			stats = newPlayerStatistics(round.PlayerID, gameType)
			byPlayer[round.PlayerID] = stats
		}
		accumulate(stats, round)
	}

	playerRanks := make([]*PlayerRank, 0, len(byPlayer))
	for _, stats := range byPlayer {
		playerRanks = append(playerRanks, &PlayerRank{
			PlayerStatistics: stats,
			WinRate:          stats.WinRate(),
			RTP:              stats.RTP(),
		})
	}

	// Sort by net profit (descending), player ID for ties
	sort.Slice(playerRanks, func(i, j int) bool {
		a, b := playerRanks[i].NetProfit(), playerRanks[j].NetProfit()
		if !a.Equal(b) {
			return a.GreaterThan(b)
		}
		return playerRanks[i].PlayerID < playerRanks[j].PlayerID
	})

	if len(playerRanks) > 0 {
		playerRanks[0].IsTopWinner = true

		// Find the player with the most rounds played
		mostRoundsIdx := 0
		for i := 1; i < len(playerRanks); i++ {
			if playerRanks[i].RoundsPlayed > playerRanks[mostRoundsIdx].RoundsPlayed {
				mostRoundsIdx = i
			}
		}
		playerRanks[mostRoundsIdx].IsTopPlayer = true
	}

	for i := range playerRanks {
		playerRanks[i].Rank = i + 1
	}

	// Calculate pagination
	totalPlayers := len(playerRanks)
	totalPages := (totalPlayers + playersPerPage - 1) / playersPerPage
	if page > totalPages && totalPages > 0 {
		page = totalPages
	}

	start := (page - 1) * playersPerPage
	end := start + playersPerPage
	if end > totalPlayers {
		end = totalPlayers
	}

	currentPagePlayers := []*PlayerRank{}
	if start < totalPlayers {
		currentPagePlayers = playerRanks[start:end]
	}

	return &Leaderboard{
		GameType:       gameType,
		Players:        currentPagePlayers,
		TotalPlayers:   totalPlayers,
		CurrentPage:    page,
		TotalPages:     totalPages,
		PlayersPerPage: playersPerPage,
		LastUpdated:    s.clock.Now(),
	}, nil
}

func newPlayerStatistics(playerID string, gameType entities.GameType) *entities.PlayerStatistics {
	return &entities.PlayerStatistics{
		PlayerID:    playerID,
		GameType:    gameType,
		TotalBet:    decimal.Zero,
		TotalPayout: decimal.Zero,
	}
}

func accumulate(stats *entities.PlayerStatistics, round *entities.RoundRecord) {
	stats.RoundsPlayed++
	stats.TotalBet = stats.TotalBet.Add(round.Bet)
	stats.TotalPayout = stats.TotalPayout.Add(round.Payout)

	switch {
	case round.IsWin():
		stats.Wins++
	case round.Payout.Equal(round.Bet):
		stats.Pushes++
	default:
		stats.Losses++
	}
	if round.JackpotWin.IsPositive() {
		stats.Jackpots++
	}
	if round.CompletedAt.After(stats.LastUpdated) {
		stats.LastUpdated = round.CompletedAt
	}
}
