package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameHintMarket is the authoritative match handler name registered with Nakama.
	MatchNameHintMarket = "hintmarket_match"

	// labelGame is the game key quick-match filters on.
	labelGame = "hintmarket"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame       int64 = 1
	OpPushPassword    int64 = 2
	OpPutToMarket     int64 = 3
	OpPushAction      int64 = 4
	OpConfirmAnswer   int64 = 5
	OpRequestSnapshot int64 = 6

	// Server -> Client events
	OpLobbyState int64 = 101
	OpResult     int64 = 102 // sealed envelope, broadcast in sequence order
	OpError      int64 = 103 // send privately
	OpSnapshot   int64 = 104 // send privately
)

// Runtime env keys read from RUNTIME_CTX_ENV.
const (
	EnvConfigPath    = "hintmarket_config_path"
	EnvSealSecret    = "hintmarket_seal_secret"
	EnvSettleWallets = "hintmarket_settle_wallets"
	EnvBotsEnabled   = "hintmarket_bots_enabled"
)

const (
	defaultConfigPath = "data/game_config.json"
	botIdentitiesPath = "data/bot_identities.json"

	// botFillSeats is how many seats a solo human's lobby is filled up to.
	botFillSeats = 3
)
