package app

// MinPlayersToStartGame defines the minimum number of seated players required to register a game.
// Barriers need at least two contributors and the target derangement needs a second player.
const MinPlayersToStartGame = 2
