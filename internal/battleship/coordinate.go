package battleship

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedCoordinate = errors.New("malformed coordinate")

// Coordinate addresses one cell, 0-indexed.
type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String returns the "row,col" tile id used by clients.
func (that Coordinate) String() string {
	return strconv.Itoa(that.Row) + "," + strconv.Itoa(that.Col)
}

// ParseCoordinate parses a "row,col" tile id.
func ParseCoordinate(id string) (Coordinate, error) {
	rowPart, colPart, ok := strings.Cut(id, ",")
	if !ok {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, id)
	}

	row, err := strconv.Atoi(strings.TrimSpace(rowPart))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, id)
	}

	col, err := strconv.Atoi(strings.TrimSpace(colPart))
	if err != nil {
		return Coordinate{}, fmt.Errorf("%w: %q", ErrMalformedCoordinate, id)
	}

	return Coordinate{Row: row, Col: col}, nil
}
