package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"hintmarket/internal/app"
	"hintmarket/internal/app/settlement"
	"hintmarket/internal/bot"
	"hintmarket/internal/config"
	"hintmarket/internal/domain"
	"hintmarket/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	MatchID              string                      `json:"match_id"`
	Seats                []string                    `json:"seats"`                   // User IDs; empty string means seat is empty. PlayerID is index+1 once started
	OwnerSeat            int                         `json:"owner_seat"`              // Seat index of the match owner
	Tick                 int64                       `json:"tick"`                    // Current tick of the match
	TickRate             int                         `json:"tick_rate"`               // Ticks per second
	Names                map[string]string           `json:"names"`                   // Display names by user ID, captured at join
	Presences            map[string]runtime.Presence `json:"-"`                       // Map UserId -> Presence for targeted messaging
	Config               config.GameConfig           `json:"-"`                       // Rules for the next game
	Authority            *app.Authority              `json:"-"`                       // Resolving party of the current game (nil in lobby)
	Sealer               *app.Sealer                 `json:"-"`                       // Nil when no seal secret is configured
	Sink                 ports.ResultSink            `json:"-"`                       // Override for the envelope transport; defaults to the dispatcher
	Settlement           *settlement.Service         `json:"-"`                       // Nil when wallets are not settled
	Settled              bool                        `json:"settled"`                 // Whether the finished game was paid out
	BotsEnabled          bool                        `json:"bots_enabled"`            // Whether AI players are allowed
	BotMinDelay          int                         `json:"bot_min_delay"`           // Min seconds a bot waits
	BotMaxDelay          int                         `json:"bot_max_delay"`           // Max seconds a bot waits
	BotAutoFillDelay     int                         `json:"bot_auto_fill_delay"`     // Seconds to wait before auto-filling with bots
	BotWaitUntil         int64                       `json:"bot_wait_until"`          // Tick when the bots should act
	LastSinglePlayerTick int64                       `json:"last_single_player_tick"` // Tick when a single player started waiting
	Bots                 map[string]*bot.Agent       `json:"-"`                       // Active bot agents by user ID
	rng                  *rand.Rand
}

// Started reports whether a game has been registered with the authority.
func (ms *MatchState) Started() bool {
	return ms.Authority != nil
}

func (ms *MatchState) random() *rand.Rand {
	if ms.rng == nil {
		ms.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return ms.rng
}

func (ms *MatchState) finished() bool {
	if ms.Authority == nil {
		return false
	}
	snapshot := ms.Authority.Replica().State()
	return snapshot.Phase() == domain.PhaseFinished
}

func (ms *MatchState) GetOpenSeatsCount() int {
	if ms.Started() {
		return 0
	}
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat != "" && !isBotUserId(seat) {
			count++
		}
	}
	return count
}

// seatOf returns the seat index of userID or -1.
func (ms *MatchState) seatOf(userID string) int {
	for i, seat := range ms.Seats {
		if seat != "" && seat == userID {
			return i
		}
	}
	return -1
}

// playerOf maps a seated user onto their player ID.
func (ms *MatchState) playerOf(userID string) (domain.PlayerID, bool) {
	seat := ms.seatOf(userID)
	if seat < 0 {
		return 0, false
	}
	return domain.PlayerID(seat + 1), true
}

func (ms *MatchState) displayName(userID string) string {
	if name := ms.Names[userID]; name != "" {
		return name
	}
	if identity, ok := bot.LookupBot(userID); ok {
		return identity.Name()
	}
	return userID
}

// isBotUserId reports whether the given user id represents a bot seat.
func isBotUserId(userId string) bool {
	return bot.IsBot(userId)
}

// isHumanSeat reports whether the seat index belongs to a human player.
func isHumanSeat(seats []string, seatIndex int) bool {
	if seatIndex < 0 || seatIndex >= len(seats) {
		return false
	}
	userId := seats[seatIndex]
	return userId != "" && !isBotUserId(userId)
}

// findFirstHumanSeat returns the first seat index with a human occupant or -1 if none exist.
func findFirstHumanSeat(seats []string) int {
	for i, userId := range seats {
		if userId != "" && !isBotUserId(userId) {
			return i
		}
	}
	return -1
}

// compactSeats drops empty seats so player IDs are contiguous.
func compactSeats(seats []string) []string {
	out := make([]string, 0, len(seats))
	for _, seat := range seats {
		if seat != "" {
			out = append(out, seat)
		}
	}
	return out
}

// runtimeEnv returns the runtime env map, or an empty one outside a Nakama process.
func runtimeEnv(ctx context.Context) map[string]string {
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		return env
	}
	return map[string]string{}
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env := runtimeEnv(ctx)

	configPath := defaultConfigPath
	if val, ok := env[EnvConfigPath]; ok && val != "" {
		configPath = val
	}
	if err := config.LoadGameConfig(configPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}
	cfg := config.GetGameConfig()

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := &MatchState{
		MatchID:   matchID,
		Seats:     make([]string, cfg.MaxPlayers),
		OwnerSeat: -1,
		TickRate:  cfg.TickRate,
		Names:     make(map[string]string),
		Presences: make(map[string]runtime.Presence),
		Config:    cfg,
		Bots:      make(map[string]*bot.Agent),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if secret, ok := env[EnvSealSecret]; ok && secret != "" {
		state.Sealer = app.NewSealer(secret, matchID)
	}
	if val, ok := env[EnvSettleWallets]; ok && val == "true" {
		state.Settlement = settlement.NewService(NewNakamaEconomyAdapter(nk))
	}
	if val, ok := env[EnvBotsEnabled]; ok {
		state.BotsEnabled = val == "true"
	}
	if state.BotsEnabled {
		if err := bot.LoadIdentities(botIdentitiesPath); err != nil {
			logger.Warn("MatchInit: Could not load bot identities: %v", err)
		}
	}
	state.BotMinDelay = 1
	state.BotMaxDelay = 3
	state.BotAutoFillDelay = 5

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}

	return state, state.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Players of a running game may reconnect; nobody else may enter.
	if matchState.Started() {
		if matchState.seatOf(presence.GetUserId()) >= 0 {
			return state, true, ""
		}
		return state, false, "Match already started"
	}

	if matchState.seatOf(presence.GetUserId()) >= 0 {
		return state, true, ""
	}

	// Allow join if there is an empty seat OR a bot to replace.
	if matchState.GetOpenSeatsCount() <= 0 {
		for _, seat := range matchState.Seats {
			if isBotUserId(seat) {
				return state, true, ""
			}
		}
		return state, false, "Match full"
	}

	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		if name := p.GetUsername(); name != "" {
			matchState.Names[userID] = name
		}

		if matchState.seatOf(userID) >= 0 {
			logger.Info("MatchJoin: User %s rejoined.", userID)
			if matchState.Started() {
				mh.sendSnapshot(matchState, dispatcher, logger, userID)
			}
			continue
		}

		// Assign seat: Try empty seats first, then bots.
		assigned := false
		for i, seatUserId := range matchState.Seats {
			if seatUserId == "" {
				matchState.Seats[i] = userID
				assigned = true
				break
			}
		}

		if !assigned {
			for i, seatUserId := range matchState.Seats {
				if isBotUserId(seatUserId) {
					logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", seatUserId, userID, i)
					delete(matchState.Bots, seatUserId)
					matchState.Seats[i] = userID
					assigned = true
					break
				}
			}
		}

		if !assigned {
			logger.Warn("MatchJoin: User %s joined but no seat (empty or bot) was available.", userID)
		}
	}

	// Ensure owner seat is assigned to a human player only.
	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to human seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match.
// Seats of a running game are kept so the player can reconnect.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		if matchState.Started() {
			logger.Debug("MatchLeave: User %s disconnected from a running game.", p.GetUserId())
			continue
		}
		if i := matchState.seatOf(p.GetUserId()); i >= 0 {
			matchState.Seats[i] = ""
			logger.Debug("MatchLeave: User %s left, seat %d freed.", p.GetUserId(), i)
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with no humans connected.")
		return nil
	}

	if !isHumanSeat(matchState.Seats, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstHumanSeat(matchState.Seats)
		logger.Debug("MatchLeave: Owner set to seat %d.", matchState.OwnerSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastLobbyState(matchState, dispatcher, logger)

	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartGame:
			mh.handleStartGame(ctx, matchState, dispatcher, logger, msg)
		case OpRequestSnapshot:
			mh.sendSnapshot(matchState, dispatcher, logger, msg.GetUserId())
		case OpPushPassword, OpPutToMarket, OpPushAction, OpConfirmAnswer:
			mh.handleCommand(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	if matchState.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	return matchState
}

func (mh *matchHandler) handleStartGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOf(senderID)

	logger.Info("StartGame: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartGame: User %s tried to start game but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the match owner can start the game")
		return
	}
	if state.Started() && !state.finished() {
		mh.sendError(state, dispatcher, logger, senderID, 409, "game already running")
		return
	}

	if err := mh.startGame(ctx, state, dispatcher, logger); err != nil {
		logger.Warn("StartGame: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
	}
}

// startGame registers every seated player with a fresh authority and broadcasts the profiles.
func (mh *matchHandler) startGame(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) error {
	seats := compactSeats(state.Seats)
	minPlayers := max(state.Config.MinPlayers, app.MinPlayersToStartGame)
	if len(seats) < minPlayers {
		return fmt.Errorf("%w: cannot start with %d players, need at least %d", domain.ErrPrecondition, len(seats), minPlayers)
	}

	profiles := domain.Profiles{Players: make(map[domain.PlayerID]domain.PlayerProfile, len(seats))}
	for i, userID := range seats {
		profiles.Players[domain.PlayerID(i+1)] = domain.PlayerProfile{DisplayName: state.displayName(userID)}
	}

	owner := ""
	if state.OwnerSeat >= 0 && state.OwnerSeat < len(state.Seats) {
		owner = state.Seats[state.OwnerSeat]
	}

	restart := state.Started()
	authority := app.NewAuthority(app.NewService(rand.New(rand.NewSource(state.random().Int63())), state.Config.Settings()), state.Sealer)
	env, err := authority.Submit(app.InitProfile(profiles))
	if err != nil {
		return err
	}

	state.Seats = seats
	state.OwnerSeat = state.seatOf(owner)
	state.Authority = authority
	state.Settled = false
	state.BotWaitUntil = 0

	state.Bots = make(map[string]*bot.Agent)
	for i, userID := range seats {
		if !isBotUserId(userID) {
			continue
		}
		identity, _ := bot.LookupBot(userID)
		agent, err := bot.NewAgent(domain.PlayerID(i+1), state.displayName(userID), identity.Level(), state.random())
		if err != nil {
			logger.Error("StartGame: Failed to create bot agent for %s: %v", userID, err)
			continue
		}
		state.Bots[userID] = agent
	}

	mh.publish(ctx, state, dispatcher, logger, env)
	// Sequence numbers restart at 1 with the new authority.
	if restart {
		for userID := range state.Presences {
			mh.sendSnapshot(state, dispatcher, logger, userID)
		}
	}
	mh.updateLabel(state, dispatcher, logger)
	mh.broadcastLobbyState(state, dispatcher, logger)

	logger.Info("StartGame: Game started with %d players (restart=%v).", len(seats), restart)
	return nil
}

func (mh *matchHandler) handleCommand(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	if !state.Started() {
		logger.Warn("handleCommand: Game not started.")
		mh.sendError(state, dispatcher, logger, senderID, 409, "game not started")
		return
	}
	player, ok := state.playerOf(senderID)
	if !ok {
		mh.sendError(state, dispatcher, logger, senderID, 403, "not seated in this match")
		return
	}

	cmd, err := decodeCommand(msg.GetOpCode(), player, msg.GetData())
	if err != nil {
		logger.Warn("handleCommand: Bad payload from %s (op %d): %v", senderID, msg.GetOpCode(), err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
		return
	}

	if err := mh.submit(ctx, state, dispatcher, logger, cmd); err != nil {
		logger.Warn("handleCommand: User %s (player %d) command %s rejected: %v", senderID, player, cmd.Kind, err)
		mh.sendError(state, dispatcher, logger, senderID, errorCode(err), err.Error())
	}
}

// submit resolves cmd through the authority and broadcasts the envelope.
func (mh *matchHandler) submit(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, cmd app.Command) error {
	before := state.Authority.Replica().State()
	env, err := state.Authority.Submit(cmd)
	if err != nil {
		return err
	}
	mh.publish(ctx, state, dispatcher, logger, env)

	after := state.Authority.Replica().State()
	if before.Stage != after.Stage || before.Phase() != after.Phase() {
		logger.Debug("submit: %s/%s -> %s/%s at seq %d", before.Stage, before.Phase(), after.Stage, after.Phase(), env.Seq)
		mh.updateLabel(state, dispatcher, logger)
	}
	if after.Phase() == domain.PhaseFinished {
		mh.settle(ctx, state, logger, &after)
	}
	return nil
}

func (mh *matchHandler) publish(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, env app.Envelope) {
	sink := state.Sink
	if sink == nil {
		sink = dispatcherSink{dispatcher: dispatcher}
	}
	if err := sink.Publish(ctx, env); err != nil {
		logger.Error("publish: Failed to broadcast envelope %d: %v", env.Seq, err)
	}
}

// settle pays out the finished game once.
func (mh *matchHandler) settle(ctx context.Context, state *MatchState, logger runtime.Logger, final *app.State) {
	if state.Settled {
		return
	}
	state.Settled = true
	logger.Info("settle: Game finished with winners %v.", final.Game.Winners)
	if state.Settlement == nil {
		return
	}

	users := make(map[domain.PlayerID]string, len(state.Seats))
	for i, userID := range state.Seats {
		if userID == "" || isBotUserId(userID) {
			continue
		}
		users[domain.PlayerID(i+1)] = userID
	}
	updates, err := state.Settlement.Settle(ctx, final, state.MatchID, users)
	if err != nil {
		logger.Error("settle: Failed to update balances: %v", err)
		return
	}
	logger.Info("settle: Applied %d wallet updates.", len(updates))
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	tickRate := int64(max(state.TickRate, 1))

	// 1. Auto-fill lobby with bots if there's only one human player after delay
	if !state.Started() {
		if state.GetHumanPlayerCount() != 1 || state.GetOccupiedSeatCount() >= min(botFillSeats, len(state.Seats)) {
			state.LastSinglePlayerTick = 0
			return
		}
		if state.LastSinglePlayerTick == 0 {
			state.LastSinglePlayerTick = state.Tick
			logger.Debug("processBots: Single player detected, starting auto-fill timer.")
		}
		if state.Tick-state.LastSinglePlayerTick < int64(state.BotAutoFillDelay)*tickRate {
			return
		}

		added := false
		for i, seat := range state.Seats {
			if state.GetOccupiedSeatCount() >= botFillSeats {
				break
			}
			if seat != "" {
				continue
			}
			identity := bot.GetBotIdentity(i)
			if identity.UserID == "" || state.seatOf(identity.UserID) >= 0 {
				continue
			}
			state.Seats[i] = identity.UserID
			logger.Info("processBots: Added bot %s (%s) to seat %d", identity.Name(), identity.UserID, i)
			added = true
		}
		if added {
			mh.updateLabel(state, dispatcher, logger)
			mh.broadcastLobbyState(state, dispatcher, logger)
		}
		state.LastSinglePlayerTick = 0
		return
	}

	// 2. Let every bot that still owes a contribution act after a short delay.
	if state.finished() || len(state.Bots) == 0 {
		return
	}
	if state.BotWaitUntil == 0 {
		delay := state.random().Intn(state.BotMaxDelay-state.BotMinDelay+1) + state.BotMinDelay
		state.BotWaitUntil = state.Tick + int64(delay)*tickRate
		return
	}
	if state.Tick < state.BotWaitUntil {
		return
	}
	state.BotWaitUntil = 0

	for _, userID := range state.Seats {
		agent, ok := state.Bots[userID]
		if !ok {
			continue
		}
		snapshot := state.Authority.Replica().State()
		cmd, ok, err := agent.Play(&snapshot)
		if err != nil {
			logger.Error("processBots: Bot %s failed to choose a move: %v", userID, err)
			continue
		}
		if !ok {
			continue
		}
		if err := mh.submit(ctx, state, dispatcher, logger, cmd); err != nil {
			logger.Error("processBots: Bot %s command %s rejected: %v", userID, cmd.Kind, err)
		}
	}
}

type lobbySeat struct {
	UserID      string          `json:"user_id"`
	Seat        int             `json:"seat"`
	Player      domain.PlayerID `json:"player"`
	DisplayName string          `json:"display_name"`
	IsOwner     bool            `json:"is_owner"`
	IsBot       bool            `json:"is_bot"`
	Connected   bool            `json:"connected"`
}

type lobbyState struct {
	Seats     []lobbySeat `json:"seats"`
	OwnerSeat int         `json:"owner_seat"`
	Tick      int64       `json:"tick"`
	Started   bool        `json:"started"`
	Seq       uint64      `json:"seq"`
}

func (mh *matchHandler) buildLobbyState(state *MatchState) lobbyState {
	lobby := lobbyState{
		Seats:     []lobbySeat{},
		OwnerSeat: state.OwnerSeat,
		Tick:      state.Tick,
		Started:   state.Started(),
	}
	if state.Started() {
		lobby.Seq = state.Authority.Replica().Seq()
	}
	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		_, connected := state.Presences[userID]
		lobby.Seats = append(lobby.Seats, lobbySeat{
			UserID:      userID,
			Seat:        i,
			Player:      domain.PlayerID(i + 1),
			DisplayName: state.displayName(userID),
			IsOwner:     i == state.OwnerSeat,
			IsBot:       isBotUserId(userID),
			Connected:   connected,
		})
	}
	return lobby
}

func (mh *matchHandler) broadcastLobbyState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	data, err := json.Marshal(mh.buildLobbyState(state))
	if err != nil {
		logger.Error("broadcastLobbyState: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpLobbyState, data, nil, nil, true); err != nil {
		logger.Error("broadcastLobbyState: Failed to broadcast: %v", err)
	}
}

// sendSnapshot sends the authority's replica snapshot to one user so they can resync.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string) {
	if !state.Started() {
		mh.sendError(state, dispatcher, logger, userID, 409, "game not started")
		return
	}
	data, err := state.Authority.Replica().Snapshot()
	if err != nil {
		logger.Error("sendSnapshot: Failed to snapshot: %v", err)
		return
	}
	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send snapshot to %s: Presence not found", userID)
		return
	}
	if err := dispatcher.BroadcastMessage(OpSnapshot, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendSnapshot: Failed to send: %v", err)
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	data, err := json.Marshal(errorEvent{Code: code, Message: message})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpError, data, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("sendError: Failed to send: %v", err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}

var _ ports.ResultSink = dispatcherSink{}
