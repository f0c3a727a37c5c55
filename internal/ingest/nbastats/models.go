package nbastats

// pageResponse is one page of the game-log endpoint. Rows are kept as raw
// maps because upstream field naming varies by feed version; the parser
// resolves them through the alias table.
type pageResponse struct {
	Rows     []map[string]any `json:"rows"`
	NextPage *int             `json:"nextPage"`
}

// searchResponse is the player search endpoint payload.
type searchResponse struct {
	Players []playerHit `json:"players"`
}

type playerHit struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Team string `json:"team"`
}
