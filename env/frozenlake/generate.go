package frozenlake

import "math/rand/v2"

// Generate returns a random size x size board with S in the top-left corner
// and G in the bottom-right one. Each other cell is frozen with probability
// p. Boards are drawn until the goal is reachable from the start, so the
// same seed always yields the same board.
func Generate(size int, p float64, seed uint64) []string {
	if size < 2 {
		size = 2
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	for {
		board := make([][]byte, size)
		for y := range board {
			board[y] = make([]byte, size)
			for x := range board[y] {
				if rng.Float64() < p {
					board[y][x] = CellFrozen
				} else {
					board[y][x] = CellHole
				}
			}
		}
		board[0][0] = CellStart
		board[size-1][size-1] = CellGoal

		if reachable(board) {
			rows := make([]string, size)
			for i, row := range board {
				rows[i] = string(row)
			}
			return rows
		}
	}
}

func reachable(board [][]byte) bool {
	size := len(board)
	seen := map[Position]bool{{X: 0, Y: 0}: true}
	queue := []Position{{X: 0, Y: 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, d := range []direction{left, down, right, up} {
			next := Position{X: cur.X + d.dx(), Y: cur.Y + d.dy()}
			if next.X < 0 || next.X >= size || next.Y < 0 || next.Y >= size || seen[next] {
				continue
			}
			switch board[next.Y][next.X] {
			case CellGoal:
				return true
			case CellHole:
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return false
}
