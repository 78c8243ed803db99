// Package rating turns the chronological pool-game log into Elo ratings,
// per-game rating trajectories, and the partitioned leaderboard.
//
// Everything in this package is a pure function of its inputs: no I/O, no
// shared state, no caching. The caller recomputes from the full game log on
// every request, which is cheap at the scale of a closed group of players.
package rating
