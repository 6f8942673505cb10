package battleship

const (
	MinPieceLength = 2
	MaxPieceLength = 5
)

// Piece is one ship: a contiguous straight run of cells on a single board.
// Its shape never changes after placement; only Hits does.
type Piece struct {
	ID    int          `json:"id"`
	Cells []Coordinate `json:"cells"`
	Hits  int          `json:"hits"`
}

func (that *Piece) Len() int {
	return len(that.Cells)
}

func (that *Piece) Sunk() bool {
	return that.Hits == len(that.Cells)
}

func (that *Piece) clone() *Piece {
	cells := make([]Coordinate, len(that.Cells))
	copy(cells, that.Cells)

	return &Piece{ID: that.ID, Cells: cells, Hits: that.Hits}
}
