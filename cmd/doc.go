// Command playlift moves playlists between Spotify and YouTube.
//
//	playlift setup config|database|rollback
//	playlift auth login <spotify|youtube> [--session id]
//	playlift auth status|logout --session id
//	playlift playlists <spotify|youtube> --session id
//	playlift serve [--addr host:port] [--workers n]
//	playlift transfer run --session id --direction spotify-to-youtube --source <link>
//	playlift transfer submit|status|history
package main
