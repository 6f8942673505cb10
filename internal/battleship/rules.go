package battleship

import (
	"fmt"
	"slices"

	"github.com/rocketscienceinc/battleship-backend/internal/apperror"
)

const (
	DefaultRows = 8
	DefaultCols = 8
)

// Rules configures a session. Fleet lists the piece lengths each player must place, one entry per piece.
type Rules struct {
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Fleet       []int  `json:"fleet"`
	FirstPlayer Player `json:"first_player"`
}

func DefaultRules() Rules {
	return Rules{
		Rows:        DefaultRows,
		Cols:        DefaultCols,
		Fleet:       []int{2, 3, 4, 5},
		FirstPlayer: Player1,
	}
}

func (that Rules) Validate() error {
	if that.Rows <= 0 || that.Cols <= 0 {
		return fmt.Errorf("%w: board %dx%d", apperror.ErrInvalidRules, that.Rows, that.Cols)
	}

	if len(that.Fleet) == 0 {
		return fmt.Errorf("%w: empty fleet", apperror.ErrInvalidRules)
	}

	for _, length := range that.Fleet {
		if length < MinPieceLength || length > MaxPieceLength {
			return fmt.Errorf("%w: piece length %d", apperror.ErrInvalidRules, length)
		}
	}

	if !that.FirstPlayer.IsValid() {
		return fmt.Errorf("%w: first player %q", apperror.ErrInvalidRules, that.FirstPlayer)
	}

	return nil
}

func (that Rules) clone() Rules {
	that.Fleet = slices.Clone(that.Fleet)
	return that
}
